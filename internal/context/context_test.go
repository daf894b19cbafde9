package context

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

func newTestContext() (*RunContext, *testutils.MemoryClipboard) {
	clip := &testutils.MemoryClipboard{}
	ctx := New(clip)
	ctx.SetTestMode(true)
	return ctx, clip
}

func TestNew_TodayDate(t *testing.T) {
	ctx, _ := newTestContext()

	value, err := ctx.GetVariable(TodayDateVariable)
	require.NoError(t, err)
	assert.Equal(t, "1-1-2025", value)
}

func TestVariables_SetGet(t *testing.T) {
	ctx, _ := newTestContext()

	require.NoError(t, ctx.SetVariable("user", "alice"))
	value, err := ctx.GetVariable("user")
	require.NoError(t, err)
	assert.Equal(t, "alice", value)

	_, err = ctx.GetVariable("missing")
	assert.True(t, errors.Is(err, behavetypes.ErrResource))

	assert.Error(t, ctx.SetVariable("", "x"))
}

func TestVariables_Clipboard(t *testing.T) {
	ctx, clip := newTestContext()

	require.NoError(t, ctx.SetVariable(ClipboardVariable, "copied"))
	text, _ := clip.Read()
	assert.Equal(t, "copied", text)
	_, stored := ctx.variables[ClipboardVariable]
	assert.False(t, stored, "clipboard writes bypass the store")

	require.NoError(t, clip.Write("from os"))
	value, err := ctx.GetVariable(ClipboardVariable)
	require.NoError(t, err)
	assert.Equal(t, "from os", value)
}

func TestVariables_NoClipboard(t *testing.T) {
	ctx := New(nil)
	_, err := ctx.GetVariable(ClipboardVariable)
	assert.True(t, errors.Is(err, behavetypes.ErrResource))
	assert.Error(t, ctx.SetVariable(ClipboardVariable, "x"))
}

func TestVariables_ExecutedTestsIsLedgerView(t *testing.T) {
	ctx, _ := newTestContext()

	value, err := ctx.GetVariable(ExecutedTestsVariable)
	require.NoError(t, err)
	assert.Equal(t, "", value)

	ctx.RecordExecuted("a")
	ctx.RecordExecuted("b")
	value, err = ctx.GetVariable(ExecutedTestsVariable)
	require.NoError(t, err)
	assert.Equal(t, "a,b", value)

	assert.Error(t, ctx.SetVariable(ExecutedTestsVariable, "x"))
	assert.True(t, ctx.HasExecuted("a"))
	assert.False(t, ctx.HasExecuted("c"))
	assert.Equal(t, []string{"a", "b"}, ctx.ExecutedTests())
}

func TestMergeVariables(t *testing.T) {
	ctx, _ := newTestContext()

	require.NoError(t, ctx.MergeVariables(map[string]string{"host": "example.com", "port": "8080"}))
	host, err := ctx.GetVariable("host")
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
	port, err := ctx.GetVariable("port")
	require.NoError(t, err)
	assert.Equal(t, "8080", port)
	_, err = ctx.GetVariable(TodayDateVariable)
	assert.NoError(t, err)
}

func TestMarker_SetReturnsPrevious(t *testing.T) {
	ctx, _ := newTestContext()
	assert.False(t, ctx.Marker().Active())

	prev := ctx.SetMarker(behavetypes.Marker{Kind: behavetypes.MarkerTest, Name: "outer"})
	assert.False(t, prev.Active())

	prev = ctx.SetMarker(behavetypes.Marker{Kind: behavetypes.MarkerAction, Name: "inner"})
	assert.Equal(t, "outer", prev.Name)

	ctx.SetMarker(prev)
	assert.Equal(t, "Test outer", ctx.Marker().Label())
}
