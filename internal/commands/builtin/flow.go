package builtin

import (
	"strings"

	"webbehave/internal/parser"
	"webbehave/pkg/behavetypes"
)

// blockArg turns a test or action reference into a block name. $variables
// are resolved; anything else is normalized like a block header.
func blockArg(ctx behavetypes.ExecutionContext, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "$") {
		return ctx.ResolveText(raw)
	}
	return parser.BlockName(raw), nil
}

// TestStartCommand implements "[test NAME]".
type TestStartCommand struct{}

// Name returns the command name "test" for registration and lookup.
func (c *TestStartCommand) Name() string { return "test" }

// Pattern returns the line pattern.
func (c *TestStartCommand) Pattern() string { return `\[test (.+)\]` }

// Description returns a brief description of what the command does.
func (c *TestStartCommand) Description() string { return "Begin a test" }

// Usage returns the statement syntax.
func (c *TestStartCommand) Usage() string { return "[test NAME]" }

// Execute makes NAME the active test.
func (c *TestStartCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	ctx.BeginTest(parser.BlockName(params[0]))
	return nil
}

// TestEndCommand implements "[endtest]".
type TestEndCommand struct{}

// Name returns the command name "endtest" for registration and lookup.
func (c *TestEndCommand) Name() string { return "endtest" }

// Pattern returns the line pattern.
func (c *TestEndCommand) Pattern() string { return `\[endtest\]` }

// Description returns a brief description of what the command does.
func (c *TestEndCommand) Description() string { return "Report the active test as passed" }

// Usage returns the statement syntax.
func (c *TestEndCommand) Usage() string { return "[endtest]" }

// Execute reports success and clears the active test.
func (c *TestEndCommand) Execute(ctx behavetypes.ExecutionContext, _ []string) error {
	ctx.EndTest()
	return nil
}

// RequireTestCommand implements "require test <name>".
type RequireTestCommand struct{}

// Name returns the command name "require-test".
func (c *RequireTestCommand) Name() string { return "require-test" }

// Pattern returns the line pattern.
func (c *RequireTestCommand) Pattern() string { return `require test (.+)` }

// Description returns a brief description of what the command does.
func (c *RequireTestCommand) Description() string {
	return "Run a test unless it already ran"
}

// Usage returns the statement syntax.
func (c *RequireTestCommand) Usage() string { return "require test <name>" }

// Execute runs the test at most once per run.
func (c *RequireTestCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	name, err := blockArg(ctx, params[0])
	if err != nil {
		return err
	}
	return ctx.RequireTest(name)
}

// RunTestCommand implements "run test <name>".
type RunTestCommand struct{}

// Name returns the command name "run-test".
func (c *RunTestCommand) Name() string { return "run-test" }

// Pattern returns the line pattern.
func (c *RunTestCommand) Pattern() string { return `run test (.+)` }

// Description returns a brief description of what the command does.
func (c *RunTestCommand) Description() string { return "Run a test unconditionally" }

// Usage returns the statement syntax.
func (c *RunTestCommand) Usage() string { return "run test <name>" }

// Execute runs the test wrapped by the each-hooks.
func (c *RunTestCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	name, err := blockArg(ctx, params[0])
	if err != nil {
		return err
	}
	return ctx.RunTest(name)
}

// RunActionCommand implements "run action <name>".
type RunActionCommand struct{}

// Name returns the command name "run-action".
func (c *RunActionCommand) Name() string { return "run-action" }

// Pattern returns the line pattern.
func (c *RunActionCommand) Pattern() string { return `run action (.+)` }

// Description returns a brief description of what the command does.
func (c *RunActionCommand) Description() string { return "Run a reusable action" }

// Usage returns the statement syntax.
func (c *RunActionCommand) Usage() string { return "run action <name>" }

// Execute runs the action's lines.
func (c *RunActionCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	name, err := blockArg(ctx, params[0])
	if err != nil {
		return err
	}
	return ctx.RunAction(name)
}

// LoadFuncsCommand implements "load funcs <file>".
type LoadFuncsCommand struct{}

// Name returns the command name "load-funcs".
func (c *LoadFuncsCommand) Name() string { return "load-funcs" }

// Pattern returns the line pattern.
func (c *LoadFuncsCommand) Pattern() string { return `load funcs (.+)` }

// Description returns a brief description of what the command does.
func (c *LoadFuncsCommand) Description() string {
	return "Load a JavaScript module of selectors and operations"
}

// Usage returns the statement syntax.
func (c *LoadFuncsCommand) Usage() string { return "load funcs <file>" }

// Execute loads the extension module.
func (c *LoadFuncsCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	path, err := ctx.ResolveText(params[0])
	if err != nil {
		return err
	}
	return ctx.LoadExtension(path)
}

// LoadCommand implements "load <file>".
type LoadCommand struct{}

// Name returns the command name "load" for registration and lookup.
func (c *LoadCommand) Name() string { return "load" }

// Pattern returns the line pattern.
func (c *LoadCommand) Pattern() string { return `load (.+)` }

// Description returns a brief description of what the command does.
func (c *LoadCommand) Description() string { return "Merge name=value lines into variables" }

// Usage returns the statement syntax.
func (c *LoadCommand) Usage() string { return "load <file>" }

// Execute merges the variable file.
func (c *LoadCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	path, err := ctx.ResolveText(params[0])
	if err != nil {
		return err
	}
	return ctx.LoadVariables(path)
}
