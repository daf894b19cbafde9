package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"webbehave/internal/services"
	"webbehave/pkg/behavetypes"
)

// OpenAsCommand implements "open <browser> as <name>".
type OpenAsCommand struct{}

// Name returns the command name "open-as" for registration and lookup.
func (c *OpenAsCommand) Name() string { return "open-as" }

// Pattern returns the line pattern.
func (c *OpenAsCommand) Pattern() string { return `open (.+) as (.+)` }

// Description returns a brief description of what the command does.
func (c *OpenAsCommand) Description() string {
	return "Open a browser session under a name"
}

// Usage returns the statement syntax.
func (c *OpenAsCommand) Usage() string { return "open <browser> as <name>" }

// Execute opens the session unless one with that name is already open.
func (c *OpenAsCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	name, err := ctx.ResolveText(params[1])
	if err != nil {
		return err
	}
	return ctx.OpenSession(browserName(params[0]), name)
}

// OpenCommand implements "open <browser>".
type OpenCommand struct{}

// Name returns the command name "open" for registration and lookup.
func (c *OpenCommand) Name() string { return "open" }

// Pattern returns the line pattern.
func (c *OpenCommand) Pattern() string { return `open (.+)` }

// Description returns a brief description of what the command does.
func (c *OpenCommand) Description() string {
	return "Open the default browser session"
}

// Usage returns the statement syntax.
func (c *OpenCommand) Usage() string { return "open <browser>" }

// Execute opens the default session unless it is already open.
func (c *OpenCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	return ctx.OpenSession(browserName(params[0]), behavetypes.DefaultSessionName)
}

func browserName(raw string) string {
	return strings.ToLower(strings.TrimSpace(services.Unquote(raw)))
}

// SetActiveBrowserCommand implements "set active browser to <name>".
type SetActiveBrowserCommand struct{}

// Name returns the command name "set-active-browser".
func (c *SetActiveBrowserCommand) Name() string { return "set-active-browser" }

// Pattern returns the line pattern.
func (c *SetActiveBrowserCommand) Pattern() string { return `set active browser to (.+)` }

// Description returns a brief description of what the command does.
func (c *SetActiveBrowserCommand) Description() string {
	return "Switch the session later commands act on"
}

// Usage returns the statement syntax.
func (c *SetActiveBrowserCommand) Usage() string { return "set active browser to <name>" }

// Execute moves the active pointer.
func (c *SetActiveBrowserCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	name, err := ctx.ResolveText(params[0])
	if err != nil {
		return err
	}
	return ctx.SetActiveSession(name)
}

// CloseBrowserCommand implements "close browser <name>".
type CloseBrowserCommand struct{}

// Name returns the command name "close-browser".
func (c *CloseBrowserCommand) Name() string { return "close-browser" }

// Pattern returns the line pattern.
func (c *CloseBrowserCommand) Pattern() string { return `close browser (.+)` }

// Description returns a brief description of what the command does.
func (c *CloseBrowserCommand) Description() string { return "Close a named browser session" }

// Usage returns the statement syntax.
func (c *CloseBrowserCommand) Usage() string { return "close browser <name>" }

// Execute closes the named session.
func (c *CloseBrowserCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	name, err := ctx.ResolveText(params[0])
	if err != nil {
		return err
	}
	return ctx.CloseSession(name)
}

// CloseActiveBrowserCommand implements "close browser".
type CloseActiveBrowserCommand struct{}

// Name returns the command name "close-active-browser".
func (c *CloseActiveBrowserCommand) Name() string { return "close-active-browser" }

// Pattern returns the line pattern.
func (c *CloseActiveBrowserCommand) Pattern() string { return `close browser` }

// Description returns a brief description of what the command does.
func (c *CloseActiveBrowserCommand) Description() string { return "Close the active browser session" }

// Usage returns the statement syntax.
func (c *CloseActiveBrowserCommand) Usage() string { return "close browser" }

// Execute closes the active session.
func (c *CloseActiveBrowserCommand) Execute(ctx behavetypes.ExecutionContext, _ []string) error {
	return ctx.CloseSession("")
}

// ReloadPageCommand implements "reload page".
type ReloadPageCommand struct{}

// Name returns the command name "reload".
func (c *ReloadPageCommand) Name() string { return "reload" }

// Pattern returns the line pattern.
func (c *ReloadPageCommand) Pattern() string { return `reload page` }

// Description returns a brief description of what the command does.
func (c *ReloadPageCommand) Description() string { return "Reload the current page" }

// Usage returns the statement syntax.
func (c *ReloadPageCommand) Usage() string { return "reload page" }

// Execute reloads the active session's page.
func (c *ReloadPageCommand) Execute(ctx behavetypes.ExecutionContext, _ []string) error {
	b, err := ctx.Browser()
	if err != nil {
		return err
	}
	return b.Reload(ctx.Context())
}

// SwitchWindowCommand implements "switch to window <index>".
type SwitchWindowCommand struct{}

// Name returns the command name "switch-window".
func (c *SwitchWindowCommand) Name() string { return "switch-window" }

// Pattern returns the line pattern.
func (c *SwitchWindowCommand) Pattern() string { return `switch to window (\d+)` }

// Description returns a brief description of what the command does.
func (c *SwitchWindowCommand) Description() string {
	return "Rebind the active session to another page target"
}

// Usage returns the statement syntax.
func (c *SwitchWindowCommand) Usage() string { return "switch to window <index>" }

// Execute switches to the 0-based window index.
func (c *SwitchWindowCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	index, err := strconv.Atoi(params[0])
	if err != nil {
		return fmt.Errorf("invalid window index %s: %w", params[0], behavetypes.ErrResource)
	}
	b, err := ctx.Browser()
	if err != nil {
		return err
	}
	return b.SwitchToWindow(ctx.Context(), index)
}
