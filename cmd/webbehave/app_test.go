package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

const mixedScript = `[test "Pass"]
open chrome
navigate to "http://example.com"
[endtest]

[action "Sign in"]
click id=submit
[endaction]

[test "Fail"]
open chrome
expect element id=missing to exist
[endtest]
`

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (*bytes.Buffer, *testutils.FakeLauncher, error) {
	t.Helper()
	out := &bytes.Buffer{}
	launcher := testutils.NewFakeLauncher(nil)
	app := NewApp(launcher, out)
	app.Clipboard = &testutils.MemoryClipboard{}

	cmd := app.CreateRootCommand()
	cmd.SetArgs(append([]string{"--test-mode", "--screenshots=false", "--wait-timeout=50ms"}, args...))
	cmd.SetOut(out)
	cmd.SetErr(out)
	err := cmd.ExecuteContext(context.Background())
	return out, launcher, err
}

func TestRun_SingleTestPasses(t *testing.T) {
	path := writeScript(t, mixedScript)

	out, launcher, err := execute(t, path, "Pass")
	require.NoError(t, err)
	assert.Equal(t, exitOK, exitCode(err))
	assert.Contains(t, out.String(), "Test Pass - SUCCESS")
	assert.Contains(t, out.String(), "1 passed, 0 failed")
	require.NotNil(t, launcher.Last())
	assert.True(t, launcher.Last().Closed)
}

func TestRun_FailureExitsOne(t *testing.T) {
	path := writeScript(t, mixedScript)

	out, _, err := execute(t, path)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
	assert.Contains(t, out.String(), "Test Fail - FAILURE")
	assert.Contains(t, out.String(), "1 passed, 1 failed")
}

func TestRun_UnknownTest(t *testing.T) {
	path := writeScript(t, mixedScript)

	out, _, err := execute(t, path, "Nope")
	assert.Equal(t, exitFailure, exitCode(err))
	assert.Contains(t, out.String(), "No test case found for 'Nope'")
	assert.Contains(t, out.String(), "Available tests: Pass, Fail")
}

func TestRun_MissingScript(t *testing.T) {
	_, _, err := execute(t, filepath.Join(t.TempDir(), "absent.txt"))
	assert.Equal(t, exitFailure, exitCode(err))
	assert.ErrorIs(t, err, behavetypes.ErrResource)
}

func TestRun_RequiresScriptArgument(t *testing.T) {
	_, _, err := execute(t)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	path := writeScript(t, mixedScript)

	out, launcher, err := execute(t, "list", path)
	require.NoError(t, err)
	assert.Equal(t, "Tests:\n  Pass\n  Fail\nActions:\n  Sign in\n", out.String())
	assert.Empty(t, launcher.Launched)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "webbehave v")

	out, _, err = execute(t, "version", "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Go Version: ")
}

func TestRunConfig_Precedence(t *testing.T) {
	t.Setenv("WEBBEHAVE_RECURSION_LIMIT", "7")
	t.Setenv("WEBBEHAVE_SCREENSHOT_DIR", "from-env")

	app := NewApp(testutils.NewFakeLauncher(nil), &bytes.Buffer{})
	cmd := app.CreateRootCommand()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--screenshot-dir=from-flag", "--headless=false"}))

	cfg := app.runConfig()
	assert.Equal(t, 7, cfg.RecursionLimit)
	assert.Equal(t, "from-flag", cfg.ScreenshotDir)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 10*time.Second, cfg.WaitTimeout)
}

func TestRunConfig_File(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "webbehave.yaml")
	require.NoError(t, os.WriteFile(config, []byte("wait-timeout: 3s\nrecursion-limit: 12\n"), 0o600))

	app := NewApp(testutils.NewFakeLauncher(nil), &bytes.Buffer{})
	cmd := app.CreateRootCommand()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--config=" + config}))
	require.NoError(t, app.initConfig())

	cfg := app.runConfig()
	assert.Equal(t, 3*time.Second, cfg.WaitTimeout)
	assert.Equal(t, 12, cfg.RecursionLimit)
}

func TestInitConfig_EnvFile(t *testing.T) {
	// Registered for cleanup, then unset so the env file can supply it.
	t.Setenv("WEBBEHAVE_RECURSION_LIMIT", "")
	require.NoError(t, os.Unsetenv("WEBBEHAVE_RECURSION_LIMIT"))
	t.Setenv("WEBBEHAVE_SCREENSHOT_DIR", "from-env")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("WEBBEHAVE_RECURSION_LIMIT=9\nWEBBEHAVE_SCREENSHOT_DIR=from-file\n"), 0o600))

	app := NewApp(testutils.NewFakeLauncher(nil), &bytes.Buffer{})
	cmd := app.CreateRootCommand()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--env-file=" + envFile}))
	require.NoError(t, app.initConfig())

	cfg := app.runConfig()
	assert.Equal(t, 9, cfg.RecursionLimit)
	assert.Equal(t, "from-env", cfg.ScreenshotDir)
}

func TestInitConfig_MissingEnvFile(t *testing.T) {
	app := NewApp(testutils.NewFakeLauncher(nil), &bytes.Buffer{})
	cmd := app.CreateRootCommand()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--env-file=" + filepath.Join(t.TempDir(), "absent.env")}))

	err := app.initConfig()
	assert.Equal(t, exitConfiguration, exitCode(err))
}

func TestInitConfig_BadFile(t *testing.T) {
	app := NewApp(testutils.NewFakeLauncher(nil), &bytes.Buffer{})
	cmd := app.CreateRootCommand()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--config=" + filepath.Join(t.TempDir(), "missing.yaml")}))

	err := app.initConfig()
	assert.Equal(t, exitConfiguration, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitConfiguration, exitCode(behavetypes.ErrConfiguration))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitFailure, exitCode(&exitError{code: exitFailure}))
	assert.Equal(t, "exit status 1", (&exitError{code: exitFailure}).Error())
}
