package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

func TestRequireAndRunTest(t *testing.T) {
	h := newHarness(t, nil)
	results := h.run(t, `set variable log to ""
[test A]
require test Setup
concat variable log with "A"
[endtest]
[test B]
run test Setup
require test Setup
concat variable log with "B"
[endtest]
[test Setup]
concat variable log with "S"
[endtest]`)

	log, err := h.runner.GetVariable("log")
	require.NoError(t, err)
	// A requires Setup, B runs it again unconditionally, then the full run
	// reaches Setup itself.
	assert.Equal(t, "SASBS", log)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
		assert.True(t, r.Passed, "%s: %v", r.Name, r.Err)
	}
	assert.Equal(t, []string{"Setup", "A", "Setup", "B", "Setup"}, names)

	executed, err := h.runner.GetVariable("executed_tests")
	require.NoError(t, err)
	assert.Equal(t, "Setup,A,Setup,B,Setup", executed)
}

func TestRunAction(t *testing.T) {
	field := &testutils.FakeElement{}
	h := newHarness(t, func(b *testutils.FakeBrowser) {
		b.SetElement(behavetypes.ID("q"), field)
	})
	results := h.run(t, `[action "fill search"]
type "shoes" into id=q
[endaction]
[action broken]
click id=missing
[endaction]
[test Search]
open chrome
run action fill search
[endtest]
[test Broken]
open chrome
run action broken
print "not reached"
[endtest]`)

	require.Len(t, results, 2)
	assert.True(t, results[0].Passed, "%v", results[0].Err)
	assert.Equal(t, "shoes", field.Value)

	assert.False(t, results[1].Passed)
	assert.True(t, h.out.Contains("Action broken - FAILURE"))
	assert.False(t, h.out.Contains("Test Broken - FAILURE"), "failure is reported once, at the action")
	assert.False(t, h.out.Contains("not reached"))
}

func TestRunAction_Unknown(t *testing.T) {
	h := newHarness(t, nil)
	res := h.test(t, "run action nowhere")
	assert.False(t, res.Passed)
	assert.ErrorIs(t, res.Err, behavetypes.ErrResource)
}

func TestLoadFuncs(t *testing.T) {
	module := `
module.exports = {
  selectors: {
    aria: function (value) { return { css: '[aria-label="' + value + '"]' }; }
  },
  operations: {
    'log in as (.+)': function (params, ctx) {
      ctx.run('type "' + params[0] + '" into aria=Username');
      ctx.run('click aria=Sign in');
      ctx.setVariable('who', params[0]);
    }
  }
};`
	path := testutils.NewFileHelpers().CreateTempFile(t, "funcs.js", module)

	user := &testutils.FakeElement{}
	h := newHarness(t, func(b *testutils.FakeBrowser) {
		b.SetElement(behavetypes.CSS(`[aria-label="Username"]`), user)
		b.SetElement(behavetypes.CSS(`[aria-label="Sign in"]`), &testutils.FakeElement{})
	})
	res := h.test(t, "load funcs \""+path+"\"\nopen chrome\nlog in as alice\nexpect variable who to match alice")
	require.True(t, res.Passed, "%v", res.Err)
	assert.Equal(t, "alice", user.Value)
	assert.Contains(t, h.browser(t).Calls(), `click css=[aria-label="Sign in"]`)
}
