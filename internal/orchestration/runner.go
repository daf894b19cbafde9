// Package orchestration drives a segmented script through its run phases:
// preamble, before-all hooks, tests wrapped by the each-hooks, after-all
// hooks and epilogue. The Runner is also the ExecutionContext every command
// handler and extension operation works against.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"webbehave/internal/commands"
	"webbehave/internal/commands/builtin"
	runcontext "webbehave/internal/context"
	"webbehave/internal/logger"
	"webbehave/internal/output"
	"webbehave/internal/parser"
	"webbehave/internal/services"
	"webbehave/pkg/behavetypes"
)

// Options configures a Runner. Zero-valued fields fall back to defaults:
// the built-in command set, the system clipboard and a stdout printer.
type Options struct {
	Config    behavetypes.RunConfig
	Launcher  behavetypes.Launcher
	Printer   *output.Printer
	Clipboard behavetypes.Clipboard
	Registry  *commands.Registry
}

// Runner executes one script. It is not safe for concurrent use.
type Runner struct {
	ctx      context.Context
	config   behavetypes.RunConfig
	launcher behavetypes.Launcher
	printer  *output.Printer
	log      *log.Logger

	run      *runcontext.RunContext
	commands *commands.Registry
	services *services.Registry

	scripts     *services.ScriptService
	text        *services.TextService
	selectors   *services.SelectorService
	varFiles    *services.VariableFileService
	screenshots *services.ScreenshotService
	extensions  *services.ExtensionService

	script  *behavetypes.Script
	state   behavetypes.RunState
	depth   int
	running map[string]bool
	results []behavetypes.TestResult
}

// NewRunner wires the services of one run and initializes them.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Launcher == nil {
		return nil, fmt.Errorf("runner requires a browser launcher: %w", behavetypes.ErrConfiguration)
	}
	if opts.Config.RecursionLimit <= 0 {
		opts.Config.RecursionLimit = behavetypes.DefaultRunConfig().RecursionLimit
	}
	if opts.Config.PollInterval <= 0 {
		opts.Config.PollInterval = behavetypes.DefaultRunConfig().PollInterval
	}

	r := &Runner{
		ctx:      context.Background(),
		config:   opts.Config,
		launcher: opts.Launcher,
		printer:  opts.Printer,
		log:      logger.NewStyledLogger("Runner"),
		commands: opts.Registry,
		services: services.NewRegistry(),
		running:  make(map[string]bool),
	}
	if r.printer == nil {
		r.printer = output.NewPrinter(output.WithStyles(output.NewThemeStyleProvider(os.Stdout)))
	}
	if r.commands == nil {
		reg, err := builtin.NewRegistry()
		if err != nil {
			return nil, err
		}
		r.commands = reg
	}
	r.log.Debug("Command registry ready", "patterns", len(r.commands.Patterns()))

	clip := opts.Clipboard
	var clipService *services.ClipboardService
	if clip == nil {
		clipService = services.NewClipboardService()
		clip = clipService
	}

	r.run = runcontext.New(clip)
	r.run.SetTestMode(opts.Config.TestMode)

	r.scripts = services.NewScriptService()
	r.text = services.NewTextService(r.run)
	r.selectors = services.NewSelectorService(r.text)
	r.varFiles = services.NewVariableFileService()
	r.screenshots = services.NewScreenshotService(opts.Config.ScreenshotDir, r.run)
	r.extensions = services.NewExtensionService(r.commands, r.selectors, r.text, r.run)

	all := []behavetypes.Service{r.scripts, r.text, r.selectors, r.varFiles, r.screenshots, r.extensions}
	if clipService != nil {
		all = append([]behavetypes.Service{clipService}, all...)
	}
	for _, svc := range all {
		if err := r.services.RegisterService(svc); err != nil {
			return nil, err
		}
	}
	if err := r.services.InitializeAll(); err != nil {
		return nil, fmt.Errorf("%w: %w", behavetypes.ErrConfiguration, err)
	}
	return r, nil
}

// LoadFile reads and segments the script at path.
func (r *Runner) LoadFile(path string) (*behavetypes.Script, error) {
	lines, err := r.scripts.LoadScript(path)
	if err != nil {
		return nil, err
	}
	return r.LoadLines(lines)
}

// LoadLines segments already filtered script lines.
func (r *Runner) LoadLines(lines []string) (*behavetypes.Script, error) {
	script, err := parser.Segment(lines)
	if err != nil {
		return nil, err
	}
	r.script = script
	r.log.Debug("Script segmented", "tests", len(script.Tests), "actions", len(script.Actions))
	return script, nil
}

// State returns the current run phase.
func (r *Runner) State() behavetypes.RunState {
	return r.state
}

// Results returns the outcome of every wrapped test run so far.
func (r *Runner) Results() []behavetypes.TestResult {
	return append([]behavetypes.TestResult(nil), r.results...)
}

// Variables exposes the run's variable store.
func (r *Runner) Variables() *runcontext.RunContext {
	return r.run
}

// Run executes the loaded script. With a non-empty testName only that test
// runs between the hook phases. Block failures are reported and absorbed;
// the returned error is reserved for configuration defects and unknown
// test names.
func (r *Runner) Run(ctx context.Context, testName string) ([]behavetypes.TestResult, error) {
	if r.script == nil {
		return nil, fmt.Errorf("no script loaded: %w", behavetypes.ErrResource)
	}
	r.ctx = ctx

	tests := r.script.Tests
	if testName != "" {
		test, ok := r.script.Test(testName)
		if !ok {
			r.printer.Println(fmt.Sprintf("No test case found for '%s'", testName))
			r.printer.Println("Available tests: " + strings.Join(r.script.TestNames(), ", "))
			return nil, fmt.Errorf("%w: %s", behavetypes.ErrUnknownTest, testName)
		}
		tests = []*behavetypes.Block{test}
	}

	if err := r.phase(behavetypes.StateRunningPreamble, func() error {
		return r.ExecuteLines(r.script.Preamble)
	}); err != nil {
		return r.Results(), err
	}
	if err := r.phase(behavetypes.StateRunningBeforeAll, func() error {
		return r.runHooks(r.script.BeforeAll)
	}); err != nil {
		return r.Results(), err
	}
	for _, test := range tests {
		if err := r.phase(behavetypes.StateRunningTests, func() error {
			return r.runWrapped(test)
		}); err != nil {
			return r.Results(), err
		}
	}
	if err := r.phase(behavetypes.StateRunningAfterAll, func() error {
		return r.runHooks(r.script.AfterAll)
	}); err != nil {
		return r.Results(), err
	}
	if err := r.phase(behavetypes.StateRunningEpilogue, func() error {
		return r.ExecuteLines(r.script.Epilogue)
	}); err != nil {
		return r.Results(), err
	}

	r.setState(behavetypes.StateDone)
	passed, failed := r.tally()
	r.printer.Summary(passed, failed)
	return r.Results(), nil
}

// phase runs fn in state, absorbing block failures that were already reported.
func (r *Runner) phase(state behavetypes.RunState, fn func() error) error {
	r.setState(state)
	err := fn()
	switch {
	case err == nil:
		return nil
	case behavetypes.IsFatal(err):
		return err
	case errors.Is(err, context.Canceled):
		return err
	default:
		r.log.Debug("Phase halted", "state", state, "error", err)
		return nil
	}
}

func (r *Runner) setState(state behavetypes.RunState) {
	if r.state != state {
		r.log.Debug("Run state changed", "state", state)
	}
	r.state = state
}

func (r *Runner) tally() (passed, failed int) {
	for _, res := range r.results {
		if res.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Failed reports whether any wrapped test failed.
func (r *Runner) Failed() bool {
	_, failed := r.tally()
	return failed > 0
}

func (r *Runner) runHooks(hooks []*behavetypes.Block) error {
	for _, hook := range hooks {
		if err := r.ExecuteLines(hook.Lines); err != nil {
			return err
		}
	}
	return nil
}

// runWrapped runs a test between the each-hooks. The after-each hooks run
// even when the body fails, and the test is recorded in the ledger either way.
func (r *Runner) runWrapped(test *behavetypes.Block) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()

	r.printer.Println(fmt.Sprintf("Running '%s'", test.Name))

	saved := r.run.Marker()
	r.running[test.Name] = true
	defer func() {
		delete(r.running, test.Name)
		r.run.SetMarker(saved)
	}()

	err := r.runHooks(r.script.BeforeEach)
	if err == nil {
		err = r.ExecuteLines(test.Lines)
	}
	if afterErr := r.runHooks(r.script.AfterEach); err == nil {
		err = afterErr
	}

	r.run.RecordExecuted(test.Name)
	r.results = append(r.results, behavetypes.TestResult{Name: test.Name, Passed: err == nil, Err: err})
	return err
}

// enter guards nested run test, require test and run action depth.
func (r *Runner) enter() error {
	if r.depth >= r.config.RecursionLimit {
		return fmt.Errorf("recursion limit exceeded (%d): %w", r.config.RecursionLimit, behavetypes.ErrResource)
	}
	r.depth++
	return nil
}

func (r *Runner) leave() {
	r.depth--
}

// Shutdown closes every still-open session, logging failures.
func (r *Runner) Shutdown() {
	for _, name := range r.run.SessionNames() {
		if err := r.closeSession(name); err != nil {
			r.log.Warn("Failed to close browser session", "session", name, "error", err)
		}
	}
}
