// Package builtin provides the statements of the script language that are
// available without loading an extension module.
package builtin

import (
	"fmt"

	"webbehave/internal/commands"
	"webbehave/pkg/behavetypes"
)

// All returns the built-in commands in evaluation order. Specific patterns
// precede the general ones that would otherwise shadow them.
func All() []behavetypes.Command {
	return []behavetypes.Command{
		&OpenAsCommand{},
		&OpenCommand{},
		&NavigateCommand{},
		&TypeCommand{},
		&ClickOffsetCommand{},
		&ClickCommand{},
		&WaitForTitleCommand{},
		&WaitUntilLocatedCommand{},
		&SleepCommand{},
		&TestStartCommand{},
		&TestEndCommand{},
		&MarkerCommand{pattern: `\[action (.+)\]`, name: "action", usage: "[action NAME]"},
		&MarkerCommand{pattern: `\[endaction\]`, name: "endaction", usage: "[endaction]"},
		&MarkerCommand{pattern: `\[(?:before|after) (?:all|each)\]`, name: "hook", usage: "[before all] | [before each] | [after all] | [after each]"},
		&MarkerCommand{pattern: `\[endbefore\]`, name: "endbefore", usage: "[endbefore]"},
		&MarkerCommand{pattern: `\[endafter\]`, name: "endafter", usage: "[endafter]"},
		&RequireTestCommand{},
		&RunTestCommand{},
		&RunActionCommand{},
		&LoadFuncsCommand{},
		&LoadCommand{},
		&ExpectTextCommand{},
		&ExpectContentCommand{},
		&ExpectExistsCommand{},
		&ExpectCountCommand{},
		&ExpectVariableCommand{},
		&SetVariableCommand{},
		&ConcatVariableCommand{},
		&SetActiveBrowserCommand{},
		&CloseBrowserCommand{},
		&CloseActiveBrowserCommand{},
		&ReloadPageCommand{},
		&SwitchWindowCommand{},
		&PrintCommand{},
		&TakeScreenshotCommand{},
	}
}

// Register adds every built-in command to reg in evaluation order.
func Register(reg *commands.Registry) error {
	for _, cmd := range All() {
		if err := reg.RegisterCommand(cmd); err != nil {
			return fmt.Errorf("failed to register %s command: %w", cmd.Name(), err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in commands.
func NewRegistry() (*commands.Registry, error) {
	reg := commands.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// MarkerCommand matches block marker lines that have no effect at run time.
type MarkerCommand struct {
	pattern string
	name    string
	usage   string
}

// Name returns the marker name.
func (c *MarkerCommand) Name() string { return c.name }

// Pattern returns the marker pattern.
func (c *MarkerCommand) Pattern() string { return c.pattern }

// Description returns a brief description of the marker.
func (c *MarkerCommand) Description() string { return "Block marker" }

// Usage returns the marker syntax.
func (c *MarkerCommand) Usage() string { return c.usage }

// Execute does nothing; the marker only delimits a block.
func (c *MarkerCommand) Execute(_ behavetypes.ExecutionContext, _ []string) error {
	return nil
}
