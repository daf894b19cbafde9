package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/internal/commands"
	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

// recordingContext is a minimal ExecutionContext for driving extension
// operations without the orchestrator.
type recordingContext struct {
	vars      mapScope
	selectors *SelectorService
	browser   *testutils.FakeBrowser
	printed   []string
	lines     []string
	tests     []string
	lineErr   error
}

func (r *recordingContext) Context() context.Context            { return context.Background() }
func (r *recordingContext) Config() behavetypes.RunConfig       { return behavetypes.DefaultRunConfig() }
func (r *recordingContext) OpenSession(_, _ string) error       { return nil }
func (r *recordingContext) CloseSession(_ string) error         { return nil }
func (r *recordingContext) SetActiveSession(_ string) error     { return nil }
func (r *recordingContext) BeginTest(_ string)                  {}
func (r *recordingContext) EndTest()                            {}
func (r *recordingContext) LoadVariables(_ string) error        { return nil }
func (r *recordingContext) LoadExtension(_ string) error        { return nil }
func (r *recordingContext) Print(text string)                   { r.printed = append(r.printed, text) }
func (r *recordingContext) Screenshot(_ string) (string, error) { return "", nil }

func (r *recordingContext) Browser() (behavetypes.Browser, error) {
	if r.browser == nil {
		return nil, fmt.Errorf("no browser is open: %w", behavetypes.ErrResource)
	}
	return r.browser, nil
}

func (r *recordingContext) Resolve(token string, allowRegex bool) (behavetypes.ResolvedValue, error) {
	return r.selectors.text.Resolve(token, allowRegex)
}

func (r *recordingContext) ResolveText(token string) (string, error) {
	return r.selectors.text.ResolveText(token)
}

func (r *recordingContext) ResolveSelector(address string) (behavetypes.Locator, error) {
	return r.selectors.Resolve(address)
}

func (r *recordingContext) GetVariable(name string) (string, error) {
	return r.vars.GetVariable(name)
}

func (r *recordingContext) SetVariable(name, value string) error {
	r.vars[name] = value
	return nil
}

func (r *recordingContext) RunTest(name string) error {
	r.tests = append(r.tests, "run "+name)
	return nil
}

func (r *recordingContext) RequireTest(name string) error {
	r.tests = append(r.tests, "require "+name)
	return nil
}

func (r *recordingContext) RunAction(name string) error {
	r.tests = append(r.tests, "action "+name)
	return nil
}

func (r *recordingContext) ExecuteLine(line string) error {
	r.lines = append(r.lines, line)
	return r.lineErr
}

func (r *recordingContext) ExecuteLines(lines []string) error {
	for _, line := range lines {
		if err := r.ExecuteLine(line); err != nil {
			return err
		}
	}
	return nil
}

type extensionFixture struct {
	ext      *ExtensionService
	registry *commands.Registry
	ctx      *recordingContext
}

func newExtensionFixture(t *testing.T) *extensionFixture {
	t.Helper()
	vars := mapScope{}
	text := NewTextService(vars)
	require.NoError(t, text.Initialize())
	selectors := NewSelectorService(text)
	require.NoError(t, selectors.Initialize())

	registry := commands.NewRegistry()
	ext := NewExtensionService(registry, selectors, text, vars)
	require.NoError(t, ext.Initialize())

	return &extensionFixture{
		ext:      ext,
		registry: registry,
		ctx:      &recordingContext{vars: vars, selectors: selectors, browser: testutils.NewFakeBrowser("chrome")},
	}
}

func (f *extensionFixture) run(t *testing.T, line string) error {
	t.Helper()
	reg, params, ok := f.registry.Resolve(line)
	require.True(t, ok, "no operation matches %q", line)
	return reg.Handler(f.ctx, params)
}

func TestExtensionService_Operations(t *testing.T) {
	f := newExtensionFixture(t)

	src := `
module.exports = {
  operations: {
    'remember (.+) as (.+)': function (params, ctx) {
      ctx.setVariable(params[1], ctx.resolveText(params[0]));
    },
    'log in as (.+)': function (params, ctx) {
      ctx.runLines(['type ' + params[0] + ' into name=user', 'click id=login']);
      ctx.requireTest('Setup');
    },
    'greet': async function (params, ctx) {
      ctx.print('hello ' + ctx.getVariable('who'));
    }
  }
};`
	require.NoError(t, f.ext.LoadSource("ops.js", src))
	assert.Equal(t, []string{"remember (.+) as (.+)", "log in as (.+)", "greet"}, f.registry.Patterns())

	require.NoError(t, f.run(t, `remember "bob" as who`))
	assert.Equal(t, "bob", f.ctx.vars["who"])

	require.NoError(t, f.run(t, "log in as alice"))
	assert.Equal(t, []string{"type alice into name=user", "click id=login"}, f.ctx.lines)
	assert.Equal(t, []string{"require Setup"}, f.ctx.tests)

	require.NoError(t, f.run(t, "greet"))
	assert.Equal(t, []string{"hello bob"}, f.ctx.printed)
}

func TestExtensionService_DriverAccess(t *testing.T) {
	f := newExtensionFixture(t)
	f.ctx.browser.SetElement(behavetypes.ID("banner"), &testutils.FakeElement{Text: "Welcome"})

	src := `
module.exports.operations = {
  'copy banner to (.+)': function (params, ctx) {
    ctx.driver.navigate('http://example.test/home');
    ctx.setVariable(params[0], ctx.driver.text('id=banner') + ' @ ' + ctx.driver.currentUrl());
  }
};`
	require.NoError(t, f.ext.LoadSource("driver.js", src))
	require.NoError(t, f.run(t, "copy banner to msg"))
	assert.Equal(t, "Welcome @ http://example.test/home", f.ctx.vars["msg"])
}

func TestExtensionService_Selectors(t *testing.T) {
	f := newExtensionFixture(t)

	src := `
module.exports = {
  selectors: {
    button: function (value) { return { xpath: '//button[text()="' + value + '"]' }; },
    field: function (value) { return 'name=' + value; },
    row: function (value) { return { by: 'css', value: 'tr[data-row="' + value + '"]' }; }
  }
};`
	require.NoError(t, f.ext.LoadSource("selectors.js", src))

	loc, err := f.ctx.selectors.Resolve("button=Save")
	require.NoError(t, err)
	assert.Equal(t, behavetypes.XPath(`//button[text()="Save"]`), loc)

	loc, err = f.ctx.selectors.Resolve("field=email")
	require.NoError(t, err)
	assert.Equal(t, behavetypes.CSS(`[name="email"]`), loc)

	loc, err = f.ctx.selectors.Resolve("row=3")
	require.NoError(t, err)
	assert.Equal(t, behavetypes.CSS(`tr[data-row="3"]`), loc)
}

func TestExtensionService_ErrorsPropagate(t *testing.T) {
	f := newExtensionFixture(t)

	src := `
module.exports.operations = {
  'explode': function () { throw new Error('kaboom'); },
  'nested': function (params, ctx) { ctx.run('inner line'); },
  'rejected': async function () { throw new Error('async kaboom'); }
};`
	require.NoError(t, f.ext.LoadSource("errors.js", src))

	err := f.run(t, "explode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")

	halt := &behavetypes.HaltError{Line: "inner line", Err: behavetypes.ErrAssertion}
	f.ctx.lineErr = halt
	err = f.run(t, "nested")
	require.Error(t, err)
	var got *behavetypes.HaltError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "inner line", got.Line)

	err = f.run(t, "rejected")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "async kaboom")
}

func TestExtensionService_MalformedModules(t *testing.T) {
	tests := map[string]string{
		"syntax error":           "module.exports = {",
		"throws on load":         "throw new Error('no');",
		"operations not object":  "module.exports.operations = 42;",
		"operation not function": "module.exports.operations = { 'x': 'y' };",
		"bad pattern":            "module.exports.operations = { '(': function () {} };",
		"requires newer version": "module.exports = { requires: '>= 99.0' };",
		"requires not a string":  "module.exports = { requires: 3 };",
		"requires unparseable":   "module.exports = { requires: 'soon' };",
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			f := newExtensionFixture(t)
			err := f.ext.LoadSource("bad.js", src)
			assert.ErrorIs(t, err, behavetypes.ErrConfiguration)
		})
	}
}

func TestExtensionService_RequiresSatisfied(t *testing.T) {
	f := newExtensionFixture(t)
	src := "module.exports = { requires: '>= 0.1', operations: { 'noop': function () {} } };"
	require.NoError(t, f.ext.LoadSource("versioned.js", src))
	require.NoError(t, f.run(t, "noop"))
}

func TestExtensionService_LoadFile(t *testing.T) {
	f := newExtensionFixture(t)

	err := f.ext.LoadFile(filepath.Join(t.TempDir(), "missing.js"))
	assert.ErrorIs(t, err, behavetypes.ErrResource)

	path := testutils.NewFileHelpers().CreateTempFile(t, "funcs.js", strings.Join([]string{
		"console.log('loading funcs');",
		"module.exports = { operations: { 'ping': function (p, ctx) { ctx.print('pong'); } } };",
	}, "\n"))
	require.NoError(t, f.ext.LoadFile(path))
	assert.Equal(t, []string{path}, f.ext.Loaded())

	require.NoError(t, f.run(t, "ping"))
	assert.Equal(t, []string{"pong"}, f.ctx.printed)
}
