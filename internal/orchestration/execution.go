package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"webbehave/internal/commands"
	"webbehave/internal/logger"
	"webbehave/pkg/behavetypes"
)

var _ behavetypes.ExecutionContext = (*Runner)(nil)

// Context returns the context bounding blocking backend calls.
func (r *Runner) Context() context.Context {
	return r.ctx
}

// Config returns the active run configuration.
func (r *Runner) Config() behavetypes.RunConfig {
	return r.config
}

// ExecuteLine dispatches a single line.
func (r *Runner) ExecuteLine(line string) error {
	return r.ExecuteLines([]string{line})
}

// dispatch resolves line to the first matching registration.
func (r *Runner) dispatch(line string) (*commands.Registration, []string, error) {
	reg, params, ok := r.commands.Resolve(line)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", behavetypes.ErrUnrecognizedLine, line)
	}
	logger.LineDispatch(line, reg.Pattern)
	return reg, params, nil
}

// ExecuteLines dispatches lines in order. Unrecognized lines are reported
// and skipped. The first failing line is reported against the active marker
// and returned as a *behavetypes.HaltError so enclosing blocks stop without
// reporting it again.
func (r *Runner) ExecuteLines(lines []string) error {
	for _, line := range lines {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		reg, params, err := r.dispatch(line)
		if errors.Is(err, behavetypes.ErrUnrecognizedLine) {
			r.log.Debug("No pattern matched", "error", err)
			r.printer.Warning(`Unable to handle "` + line + `"`)
			continue
		}

		err = reg.Handler(r, params)
		if err == nil {
			continue
		}
		if behavetypes.IsHalt(err) || behavetypes.IsFatal(err) {
			return err
		}
		r.reportFailure(line, err)
		return &behavetypes.HaltError{Line: line, Err: err}
	}
	return nil
}

// reportFailure prints the failure of line against the active marker and
// captures a screenshot when enabled.
func (r *Runner) reportFailure(line string, err error) {
	marker := r.run.Marker()
	if !marker.Active() {
		r.log.Error("Line failed outside of a test", "line", line, "error", err)
		return
	}

	r.printer.Failure(marker.Label() + " - FAILURE")
	r.printer.Detail("line: " + line)
	r.printer.Detail("error: " + err.Error())

	if !r.config.ScreenshotOnFailure {
		return
	}
	if _, berr := r.run.ActiveBrowser(); berr != nil {
		return
	}
	path, serr := r.Screenshot(marker.Label())
	if serr != nil {
		r.log.Warn("Failed to capture failure screenshot", "error", serr)
		return
	}
	r.printer.Detail("screenshot: " + path)
}

// Resolve resolves a raw token through the text resolution rules.
func (r *Runner) Resolve(token string, allowRegex bool) (behavetypes.ResolvedValue, error) {
	return r.text.Resolve(token, allowRegex)
}

// ResolveText resolves a token that must produce plain text.
func (r *Runner) ResolveText(token string) (string, error) {
	return r.text.ResolveText(token)
}

// ResolveSelector turns a type=value address into a locator.
func (r *Runner) ResolveSelector(address string) (behavetypes.Locator, error) {
	return r.selectors.Resolve(address)
}

// GetVariable reads a variable, honouring the special names.
func (r *Runner) GetVariable(name string) (string, error) {
	return r.run.GetVariable(name)
}

// SetVariable writes a variable, honouring the special names.
func (r *Runner) SetVariable(name, value string) error {
	return r.run.SetVariable(name, value)
}

// BeginTest marks name as the active test.
func (r *Runner) BeginTest(name string) {
	r.run.SetMarker(behavetypes.Marker{Kind: behavetypes.MarkerTest, Name: name})
}

// EndTest reports the active test as successful and clears the marker.
func (r *Runner) EndTest() {
	marker := r.run.Marker()
	if marker.Kind == behavetypes.MarkerTest {
		r.printer.Success(marker.Label() + " - SUCCESS")
	}
	r.run.SetMarker(behavetypes.Marker{})
}

// RunTest runs a test unconditionally, wrapped by the each-hooks.
func (r *Runner) RunTest(name string) error {
	test, err := r.lookupTest(name)
	if err != nil {
		return err
	}
	return r.runWrapped(test)
}

// RequireTest runs a test unless the run ledger already records it.
func (r *Runner) RequireTest(name string) error {
	if r.run.HasExecuted(name) {
		r.log.Debug("Required test already executed", "test", name)
		return nil
	}
	if r.running[name] {
		return fmt.Errorf("circular dependency: test %s requires itself: %w", name, behavetypes.ErrResource)
	}
	test, err := r.lookupTest(name)
	if err != nil {
		return err
	}
	return r.runWrapped(test)
}

// RunAction runs an action's lines with the action as active marker.
func (r *Runner) RunAction(name string) error {
	action, ok := r.script.Actions[name]
	if !ok {
		return fmt.Errorf("no action named %s: %w", name, behavetypes.ErrResource)
	}
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()

	saved := r.run.SetMarker(behavetypes.Marker{Kind: behavetypes.MarkerAction, Name: name})
	defer r.run.SetMarker(saved)

	return r.ExecuteLines(action.Lines)
}

func (r *Runner) lookupTest(name string) (*behavetypes.Block, error) {
	if r.script == nil {
		return nil, fmt.Errorf("no script loaded: %w", behavetypes.ErrResource)
	}
	test, ok := r.script.Test(name)
	if !ok {
		return nil, fmt.Errorf("no test named %s: %w", name, behavetypes.ErrResource)
	}
	return test, nil
}

// LoadVariables merges a name=value file into the variable store.
func (r *Runner) LoadVariables(path string) error {
	vars, err := r.varFiles.Load(path)
	if err != nil {
		return err
	}
	return r.run.MergeVariables(vars)
}

// LoadExtension loads a JavaScript extension module.
func (r *Runner) LoadExtension(path string) error {
	return r.extensions.LoadFile(path)
}

// Print writes a line to the run's console output.
func (r *Runner) Print(text string) {
	r.printer.Println(text)
}

// Screenshot captures the active session and returns the saved path.
func (r *Runner) Screenshot(label string) (string, error) {
	b, err := r.run.ActiveBrowser()
	if err != nil {
		return "", err
	}
	png, err := b.Screenshot(r.ctx)
	if err != nil {
		return "", err
	}
	return r.screenshots.Save(label, png)
}
