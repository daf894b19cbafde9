package builtin

import (
	"strings"

	"webbehave/internal/services"
	"webbehave/pkg/behavetypes"
)

// variableName accepts a bare, $-prefixed or quoted variable name.
func variableName(raw string) string {
	return strings.TrimPrefix(services.Unquote(strings.TrimSpace(raw)), "$")
}

// SetVariableCommand implements "set variable <name> to <token>".
type SetVariableCommand struct{}

// Name returns the command name "set-variable".
func (c *SetVariableCommand) Name() string { return "set-variable" }

// Pattern returns the line pattern.
func (c *SetVariableCommand) Pattern() string { return `set variable (.+) to (.+)` }

// Description returns a brief description of what the command does.
func (c *SetVariableCommand) Description() string { return "Store a resolved value in a variable" }

// Usage returns the statement syntax.
func (c *SetVariableCommand) Usage() string { return "set variable <name> to <token>" }

// Execute stores the resolved token.
func (c *SetVariableCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	value, err := ctx.ResolveText(params[1])
	if err != nil {
		return err
	}
	return ctx.SetVariable(variableName(params[0]), value)
}

// ConcatVariableCommand implements "concat variable <name> with <token>".
type ConcatVariableCommand struct{}

// Name returns the command name "concat-variable".
func (c *ConcatVariableCommand) Name() string { return "concat-variable" }

// Pattern returns the line pattern.
func (c *ConcatVariableCommand) Pattern() string { return `concat variable (.+) with (.+)` }

// Description returns a brief description of what the command does.
func (c *ConcatVariableCommand) Description() string {
	return "Append a resolved value to a variable"
}

// Usage returns the statement syntax.
func (c *ConcatVariableCommand) Usage() string { return "concat variable <name> with <token>" }

// Execute appends the resolved token. The variable must already exist.
func (c *ConcatVariableCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	name := variableName(params[0])
	current, err := ctx.GetVariable(name)
	if err != nil {
		return err
	}
	suffix, err := ctx.ResolveText(params[1])
	if err != nil {
		return err
	}
	return ctx.SetVariable(name, current+suffix)
}

// PrintCommand implements "print <token>".
type PrintCommand struct{}

// Name returns the command name "print" for registration and lookup.
func (c *PrintCommand) Name() string { return "print" }

// Pattern returns the line pattern.
func (c *PrintCommand) Pattern() string { return `print (.+)` }

// Description returns a brief description of what the command does.
func (c *PrintCommand) Description() string { return "Print resolved text" }

// Usage returns the statement syntax.
func (c *PrintCommand) Usage() string { return "print <token>" }

// Execute prints the resolved token.
func (c *PrintCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	text, err := ctx.ResolveText(params[0])
	if err != nil {
		return err
	}
	ctx.Print(text)
	return nil
}

// TakeScreenshotCommand implements "take screenshot".
type TakeScreenshotCommand struct{}

// Name returns the command name "screenshot".
func (c *TakeScreenshotCommand) Name() string { return "screenshot" }

// Pattern returns the line pattern.
func (c *TakeScreenshotCommand) Pattern() string { return `take screenshot` }

// Description returns a brief description of what the command does.
func (c *TakeScreenshotCommand) Description() string {
	return "Save a screenshot of the active session"
}

// Usage returns the statement syntax.
func (c *TakeScreenshotCommand) Usage() string { return "take screenshot" }

// Execute saves a screenshot and prints its path.
func (c *TakeScreenshotCommand) Execute(ctx behavetypes.ExecutionContext, _ []string) error {
	path, err := ctx.Screenshot("screenshot")
	if err != nil {
		return err
	}
	ctx.Print("Screenshot saved to " + path)
	return nil
}
