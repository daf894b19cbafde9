package services

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

func TestReadScript_FiltersAndTrims(t *testing.T) {
	src := "# header comment\r\n\r\n  open chrome  \r\n\tnavigate to \"http://x\"\n   # indented comment\nclick id=go\n"

	lines, err := ReadScript(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"open chrome", `navigate to "http://x"`, "click id=go"}, lines)
}

func TestReadScript_Empty(t *testing.T) {
	lines, err := ReadScript(strings.NewReader("\n# only comments\n"))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestScriptService_LoadScript(t *testing.T) {
	svc := NewScriptService()
	_, err := svc.LoadScript("anything")
	assert.Error(t, err, "uninitialized service")

	require.NoError(t, svc.Initialize())
	assert.Equal(t, "script", svc.Name())

	path := testutils.NewFileHelpers().CreateTempFile(t, "login.behave", "[test Login]\nopen chrome\n[endtest]\n")
	lines, err := svc.LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"[test Login]", "open chrome", "[endtest]"}, lines)

	_, err = svc.LoadScript(filepath.Join(t.TempDir(), "missing.behave"))
	assert.ErrorIs(t, err, behavetypes.ErrResource)
}
