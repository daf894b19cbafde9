package context

import (
	"fmt"
	"sort"
	"strings"

	"webbehave/internal/logger"
	"webbehave/pkg/behavetypes"
)

const (
	// TodayDateVariable holds the run date as M-D-YYYY.
	TodayDateVariable = "today_date"
	// ClipboardVariable reads and writes the OS clipboard.
	ClipboardVariable = "clipboard"
	// ExecutedTestsVariable is a read-only, comma-separated view of the run ledger.
	ExecutedTestsVariable = "executed_tests"
)

// GetVariable retrieves a variable value by name. The clipboard and
// executed_tests names bypass the store.
func (ctx *RunContext) GetVariable(name string) (string, error) {
	switch name {
	case ClipboardVariable:
		if ctx.clipboard == nil {
			return "", fmt.Errorf("clipboard is not available: %w", behavetypes.ErrResource)
		}
		return ctx.clipboard.Read()
	case ExecutedTestsVariable:
		return strings.Join(ctx.ExecutedTests(), ","), nil
	}

	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	if value, ok := ctx.variables[name]; ok {
		return value, nil
	}
	return "", fmt.Errorf("variable %s not found: %w", name, behavetypes.ErrResource)
}

// SetVariable stores a variable, writing through to the clipboard for the
// clipboard name.
func (ctx *RunContext) SetVariable(name string, value string) error {
	if name == "" {
		return fmt.Errorf("variable name cannot be empty: %w", behavetypes.ErrResource)
	}

	switch name {
	case ClipboardVariable:
		if ctx.clipboard == nil {
			return fmt.Errorf("clipboard is not available: %w", behavetypes.ErrResource)
		}
		logger.VariableOperation("set", name, value)
		return ctx.clipboard.Write(value)
	case ExecutedTestsVariable:
		return fmt.Errorf("cannot set read-only variable %s: %w", name, behavetypes.ErrResource)
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.variables[name] = value
	logger.VariableOperation("set", name, value)
	return nil
}

// MergeVariables stores every entry of vars, in name order.
func (ctx *RunContext) MergeVariables(vars map[string]string) error {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.SetVariable(name, vars[name]); err != nil {
			return err
		}
	}
	return nil
}
