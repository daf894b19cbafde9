package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/internal/output"
	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

func TestDispatch(t *testing.T) {
	printer, _ := output.NewTestPrinter()
	r, err := NewRunner(Options{
		Config:    behavetypes.DefaultRunConfig(),
		Launcher:  testutils.NewFakeLauncher(nil),
		Printer:   printer,
		Clipboard: &testutils.MemoryClipboard{},
	})
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)

	reg, params, err := r.dispatch(`print "hi"`)
	require.NoError(t, err)
	assert.Equal(t, "print", reg.Name)
	assert.NotEmpty(t, params)

	reg, _, err = r.dispatch("do a barrel roll")
	assert.Nil(t, reg)
	assert.ErrorIs(t, err, behavetypes.ErrUnrecognizedLine)
	assert.Equal(t, "unrecognized line: do a barrel roll", err.Error())
}
