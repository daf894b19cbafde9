package builtin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/internal/commands/builtin"
	"webbehave/internal/orchestration"
	"webbehave/internal/output"
	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

// harness runs scripts against fake browsers and captures the report.
type harness struct {
	runner   *orchestration.Runner
	launcher *testutils.FakeLauncher
	out      *output.CaptureBuffer
	shots    string
}

func newHarness(t *testing.T, setup func(*testutils.FakeBrowser)) *harness {
	t.Helper()
	testutils.ResetTestCounters()

	printer, out := output.NewTestPrinter()
	cfg := behavetypes.DefaultRunConfig()
	cfg.TestMode = true
	cfg.WaitTimeout = 200 * time.Millisecond
	cfg.PollInterval = 10 * time.Millisecond
	cfg.ScreenshotDir = t.TempDir()

	launcher := testutils.NewFakeLauncher(setup)
	runner, err := orchestration.NewRunner(orchestration.Options{
		Config:    cfg,
		Launcher:  launcher,
		Printer:   printer,
		Clipboard: &testutils.MemoryClipboard{},
	})
	require.NoError(t, err)
	t.Cleanup(runner.Shutdown)

	return &harness{runner: runner, launcher: launcher, out: out, shots: cfg.ScreenshotDir}
}

func (h *harness) run(t *testing.T, script string) []behavetypes.TestResult {
	t.Helper()
	_, err := h.runner.LoadLines(testutils.ScriptLines(script))
	require.NoError(t, err)
	results, err := h.runner.Run(context.Background(), "")
	require.NoError(t, err)
	return results
}

// test runs body as the single test T and returns its outcome.
func (h *harness) test(t *testing.T, body string) behavetypes.TestResult {
	t.Helper()
	results := h.run(t, "[test T]\n"+body+"\n[endtest]")
	require.Len(t, results, 1)
	return results[0]
}

func (h *harness) browser(t *testing.T) *testutils.FakeBrowser {
	t.Helper()
	b := h.launcher.Last()
	require.NotNil(t, b, "no browser was launched")
	return b
}

func TestAll_UniquePatternsAndMetadata(t *testing.T) {
	seen := map[string]bool{}
	for _, cmd := range builtin.All() {
		assert.NotEmpty(t, cmd.Name())
		assert.NotEmpty(t, cmd.Description(), cmd.Name())
		assert.NotEmpty(t, cmd.Usage(), cmd.Name())
		assert.False(t, seen[cmd.Pattern()], "duplicate pattern %s", cmd.Pattern())
		seen[cmd.Pattern()] = true
	}
}

func TestNewRegistry_EvaluationOrder(t *testing.T) {
	reg, err := builtin.NewRegistry()
	require.NoError(t, err)
	assert.Len(t, reg.Patterns(), len(builtin.All()))

	tests := []struct {
		line   string
		name   string
		params []string
	}{
		{"open chrome as admin", "open-as", []string{"chrome", "admin"}},
		{"open headless chrome", "open", []string{"headless chrome"}},
		{"click id=go with offset (5, -3)", "click-offset", []string{"id=go", "5", "-3"}},
		{"click id=go", "click", []string{"id=go"}},
		{`type "a into b" into id=q`, "type", []string{`"a into b"`, "id=q"}},
		{"load funcs ext.js", "load-funcs", []string{"ext.js"}},
		{"load vars.env", "load", []string{"vars.env"}},
		{"expect element id=x to not exist", "expect-exists", []string{"id=x", "not exist"}},
		{"expect element id=x to have text y", "expect-text", []string{"id=x", "y"}},
		{"close browser", "close-active-browser", []string{}},
		{"close browser second", "close-browser", []string{"second"}},
		{"[test Login]", "test", []string{"Login"}},
		{"[before each]", "hook", []string{}},
		{"[endafter]", "endafter", []string{}},
		{`wait for title to be "Home"`, "wait-title", []string{"Home"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, params, ok := reg.Resolve(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.name, got.Name)
			assert.Equal(t, tt.params, params)
		})
	}

	_, _, ok := reg.Resolve("dance wildly")
	assert.False(t, ok)
}
