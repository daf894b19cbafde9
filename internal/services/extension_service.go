package services

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"webbehave/internal/commands"
	"webbehave/internal/logger"
	"webbehave/internal/version"
	"webbehave/pkg/behavetypes"
)

// consolePrinter routes console.* output from extension modules to the
// Extensions component logger.
type consolePrinter struct {
	log *log.Logger
}

func (p consolePrinter) Log(s string)   { p.log.Info(s) }
func (p consolePrinter) Warn(s string)  { p.log.Warn(s) }
func (p consolePrinter) Error(s string) { p.log.Error(s) }

// ExtensionService loads CommonJS modules that contribute custom selector
// types and operations. All modules share one runtime, which is only used
// from the goroutine executing the script.
type ExtensionService struct {
	initialized bool

	registry  *commands.Registry
	selectors *SelectorService
	text      *TextService
	scope     VariableScope

	vm      *goja.Runtime
	require *require.RequireModule
	log     *log.Logger
	loaded  []string
}

// NewExtensionService creates an ExtensionService registering operations
// into registry and selector builders into selectors.
func NewExtensionService(registry *commands.Registry, selectors *SelectorService, text *TextService, scope VariableScope) *ExtensionService {
	return &ExtensionService{
		registry:  registry,
		selectors: selectors,
		text:      text,
		scope:     scope,
	}
}

// Name returns the service name "extension" for registration.
func (e *ExtensionService) Name() string {
	return "extension"
}

// Initialize creates the JavaScript runtime with require and console.
func (e *ExtensionService) Initialize() error {
	if e.registry == nil || e.selectors == nil || e.text == nil || e.scope == nil {
		return fmt.Errorf("extension service is missing dependencies")
	}

	e.log = logger.NewStyledLogger("Extensions")
	e.vm = goja.New()

	registry := require.NewRegistry()
	registry.RegisterNativeModule("console", console.RequireWithPrinter(consolePrinter{log: e.log}))
	e.require = registry.Enable(e.vm)

	consoleObj, err := e.require.Require("console")
	if err != nil {
		return fmt.Errorf("failed to enable console: %w", err)
	}
	if err := e.vm.Set("console", consoleObj); err != nil {
		return fmt.Errorf("failed to expose console: %w", err)
	}

	e.initialized = true
	return nil
}

// Loaded returns the paths of modules loaded so far.
func (e *ExtensionService) Loaded() []string {
	return append([]string(nil), e.loaded...)
}

// LoadFile evaluates the module at path and registers its exports. A missing
// file is a resource error; a module that fails to evaluate or exports the
// wrong shape is a configuration error.
func (e *ExtensionService) LoadFile(path string) error {
	if !e.initialized {
		return fmt.Errorf("extension service not initialized")
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read extension module: %w: %w", behavetypes.ErrResource, err)
	}
	if err := e.LoadSource(path, string(src)); err != nil {
		return err
	}
	e.loaded = append(e.loaded, path)
	return nil
}

// LoadSource evaluates module source registered under name.
func (e *ExtensionService) LoadSource(name, src string) error {
	if !e.initialized {
		return fmt.Errorf("extension service not initialized")
	}

	wrapped := "(function(module, exports, require) {\n" + src + "\n})"
	prog, err := goja.Compile(name, wrapped, false)
	if err != nil {
		return configErr(name, "syntax error: %v", err)
	}
	fnVal, err := e.vm.RunProgram(prog)
	if err != nil {
		return configErr(name, "%v", err)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return configErr(name, "module wrapper is not callable")
	}

	module := e.vm.NewObject()
	exports := e.vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return configErr(name, "%v", err)
	}
	if _, err := fn(goja.Undefined(), module, exports, e.vm.Get("require")); err != nil {
		return configErr(name, "evaluation failed: %v", err)
	}

	exported, ok := module.Get("exports").(*goja.Object)
	if !ok {
		return configErr(name, "module.exports must be an object")
	}
	if err := checkRequires(name, exported.Get("requires")); err != nil {
		return err
	}

	selectors, err := e.exportedFunctions(name, exported, "selectors")
	if err != nil {
		return err
	}
	operations, err := e.exportedFunctions(name, exported, "operations")
	if err != nil {
		return err
	}

	for _, sel := range selectors {
		e.selectors.RegisterBuilder(sel.key, e.selectorBuilder(sel.key, sel.fn))
	}
	for _, op := range operations {
		if err := e.registry.Register(op.key, e.operationHandler(op.key, op.fn)); err != nil {
			return configErr(name, "%v", err)
		}
	}

	e.log.Debug("Loaded extension module", "module", name, "selectors", len(selectors), "operations", len(operations))
	return nil
}

// checkRequires enforces an optional semver constraint exported as
// module.exports.requires, e.g. ">= 0.3".
func checkRequires(module string, v goja.Value) error {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	constraint, ok := v.Export().(string)
	if !ok {
		return configErr(module, "requires must be a version constraint string")
	}
	compatible, err := version.IsCompatible(constraint)
	if err != nil {
		return configErr(module, "%v", err)
	}
	if !compatible {
		return configErr(module, "requires webbehave %s, running %s", constraint, version.GetVersion())
	}
	return nil
}

type namedFunction struct {
	key string
	fn  goja.Callable
}

// exportedFunctions reads an optional mapping of name to function, keeping
// the mapping's key order.
func (e *ExtensionService) exportedFunctions(module string, exports *goja.Object, field string) ([]namedFunction, error) {
	value := exports.Get(field)
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}
	obj, ok := value.(*goja.Object)
	if !ok {
		return nil, configErr(module, "%s must be an object", field)
	}

	var result []namedFunction
	for _, key := range obj.Keys() {
		fn, ok := goja.AssertFunction(obj.Get(key))
		if !ok {
			return nil, configErr(module, "%s[%q] must be a function", field, key)
		}
		result = append(result, namedFunction{key: key, fn: fn})
	}
	return result, nil
}

// operationHandler adapts a JS operation to a command handler.
func (e *ExtensionService) operationHandler(pattern string, fn goja.Callable) behavetypes.Handler {
	return func(ctx behavetypes.ExecutionContext, params []string) error {
		args := make([]interface{}, len(params))
		for i, p := range params {
			args[i] = p
		}

		result, err := fn(goja.Undefined(), e.vm.NewArray(args...), e.executionObject(ctx))
		if err != nil {
			return jsError(pattern, err)
		}
		if _, err := e.settle(result); err != nil {
			return jsError(pattern, err)
		}
		return nil
	}
}

// selectorBuilder adapts a JS selector builder. Builders may return a
// locator object ({css}, {xpath}, {id} or {by, value}) or another address.
func (e *ExtensionService) selectorBuilder(typeName string, fn goja.Callable) SelectorBuilder {
	return func(value string) (behavetypes.Locator, string, error) {
		result, err := fn(goja.Undefined(), e.vm.ToValue(value), e.builderObject())
		if err != nil {
			return behavetypes.Locator{}, "", jsError("selector "+typeName, err)
		}
		result, err = e.settle(result)
		if err != nil {
			return behavetypes.Locator{}, "", jsError("selector "+typeName, err)
		}
		return e.toLocator(typeName, result)
	}
}

func (e *ExtensionService) toLocator(typeName string, v goja.Value) (behavetypes.Locator, string, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return behavetypes.Locator{}, "", fmt.Errorf("selector builder %s returned nothing: %w", typeName, behavetypes.ErrResource)
	}
	if s, ok := v.Export().(string); ok {
		return behavetypes.Locator{}, s, nil
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return behavetypes.Locator{}, "", fmt.Errorf("selector builder %s returned %s: %w", typeName, v.String(), behavetypes.ErrResource)
	}

	if by := obj.Get("by"); by != nil && !goja.IsUndefined(by) {
		strategy, ok := behavetypes.ParseLocatorStrategy(by.String())
		if !ok {
			return behavetypes.Locator{}, "", fmt.Errorf("selector builder %s returned unknown strategy %q: %w", typeName, by.String(), behavetypes.ErrResource)
		}
		return behavetypes.Locator{Strategy: strategy, Value: obj.Get("value").String()}, "", nil
	}
	for _, key := range []string{"css", "xpath", "id"} {
		if val := obj.Get(key); val != nil && !goja.IsUndefined(val) {
			strategy, _ := behavetypes.ParseLocatorStrategy(key)
			return behavetypes.Locator{Strategy: strategy, Value: val.String()}, "", nil
		}
	}
	return behavetypes.Locator{}, "", fmt.Errorf("selector builder %s returned an object without css, xpath or id: %w", typeName, behavetypes.ErrResource)
}

// settle unwraps promises. Rejected and still-pending promises are errors
// since scripts run synchronously.
func (e *ExtensionService) settle(v goja.Value) (goja.Value, error) {
	if v == nil {
		return goja.Undefined(), nil
	}
	p, ok := v.Export().(*goja.Promise)
	if !ok {
		return v, nil
	}
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return p.Result(), nil
	case goja.PromiseStateRejected:
		if err := exportedError(p.Result()); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("promise rejected: %s", p.Result().String())
	default:
		return nil, fmt.Errorf("promise still pending after the operation returned")
	}
}

// builderObject is the context handed to selector builders.
func (e *ExtensionService) builderObject() *goja.Object {
	obj := e.vm.NewObject()
	_ = obj.Set("getVariable", func(name string) (string, error) {
		return e.scope.GetVariable(name)
	})
	_ = obj.Set("resolveText", func(token string) (string, error) {
		return e.text.ResolveText(token)
	})
	return obj
}

// executionObject exposes an execution context to an operation.
func (e *ExtensionService) executionObject(ctx behavetypes.ExecutionContext) *goja.Object {
	obj := e.vm.NewObject()
	_ = obj.Set("getVariable", ctx.GetVariable)
	_ = obj.Set("setVariable", ctx.SetVariable)
	_ = obj.Set("resolveText", ctx.ResolveText)
	_ = obj.Set("run", ctx.ExecuteLine)
	_ = obj.Set("runLines", ctx.ExecuteLines)
	_ = obj.Set("runTest", ctx.RunTest)
	_ = obj.Set("requireTest", ctx.RequireTest)
	_ = obj.Set("runAction", ctx.RunAction)
	_ = obj.Set("print", ctx.Print)
	_ = obj.Set("driver", e.driverObject(ctx))
	return obj
}

// driverObject exposes the active session with selector addresses resolved.
func (e *ExtensionService) driverObject(ctx behavetypes.ExecutionContext) *goja.Object {
	withElement := func(address string, fn func(b behavetypes.Browser, loc behavetypes.Locator) error) error {
		b, err := ctx.Browser()
		if err != nil {
			return err
		}
		loc, err := ctx.ResolveSelector(address)
		if err != nil {
			return err
		}
		return fn(b, loc)
	}

	obj := e.vm.NewObject()
	_ = obj.Set("navigate", func(url string) error {
		b, err := ctx.Browser()
		if err != nil {
			return err
		}
		return b.Navigate(ctx.Context(), url)
	})
	_ = obj.Set("reload", func() error {
		b, err := ctx.Browser()
		if err != nil {
			return err
		}
		return b.Reload(ctx.Context())
	})
	_ = obj.Set("title", func() (string, error) {
		b, err := ctx.Browser()
		if err != nil {
			return "", err
		}
		return b.Title(ctx.Context())
	})
	_ = obj.Set("currentUrl", func() (string, error) {
		b, err := ctx.Browser()
		if err != nil {
			return "", err
		}
		return b.CurrentURL(ctx.Context())
	})
	_ = obj.Set("click", func(address string) error {
		return withElement(address, func(b behavetypes.Browser, loc behavetypes.Locator) error {
			return b.Click(ctx.Context(), loc)
		})
	})
	_ = obj.Set("type", func(text, address string) error {
		return withElement(address, func(b behavetypes.Browser, loc behavetypes.Locator) error {
			return b.SendKeys(ctx.Context(), loc, text)
		})
	})
	_ = obj.Set("text", func(address string) (string, error) {
		var out string
		err := withElement(address, func(b behavetypes.Browser, loc behavetypes.Locator) error {
			var err error
			out, err = b.Text(ctx.Context(), loc)
			return err
		})
		return out, err
	})
	_ = obj.Set("value", func(address string) (string, error) {
		var out string
		err := withElement(address, func(b behavetypes.Browser, loc behavetypes.Locator) error {
			var err error
			out, err = b.Value(ctx.Context(), loc)
			return err
		})
		return out, err
	})
	_ = obj.Set("count", func(address string) (int, error) {
		var out int
		err := withElement(address, func(b behavetypes.Browser, loc behavetypes.Locator) error {
			var err error
			out, err = b.Count(ctx.Context(), loc)
			return err
		})
		return out, err
	})
	return obj
}

// exportedError recovers a Go error carried by a JS value.
func exportedError(v goja.Value) error {
	if v == nil {
		return nil
	}
	if obj, ok := v.(*goja.Object); ok {
		if inner := obj.Get("value"); inner != nil {
			if err, ok := inner.Export().(error); ok {
				return err
			}
		}
	}
	return nil
}

// jsError wraps an error raised by extension code, keeping any Go error
// (such as an already-reported halt) reachable through errors.Is/As.
func jsError(where string, err error) error {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		if inner := ex.Unwrap(); inner != nil {
			return fmt.Errorf("%s: %w", where, inner)
		}
		return fmt.Errorf("%s: %s", where, ex.Value().String())
	}
	return fmt.Errorf("%s: %w", where, err)
}

func configErr(module, format string, args ...interface{}) error {
	return fmt.Errorf("extension module %s: %s: %w", module, fmt.Sprintf(format, args...), behavetypes.ErrConfiguration)
}
