package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"webbehave/pkg/behavetypes"
)

// describeDiff renders an inline diff of expected against actual, marking
// removed runs as [-x-] and inserted runs as {+x+}.
func describeDiff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(expected, actual, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// ExpectTextCommand implements "expect element <sel> to have text <token>".
type ExpectTextCommand struct{}

// Name returns the command name "expect-text".
func (c *ExpectTextCommand) Name() string { return "expect-text" }

// Pattern returns the line pattern.
func (c *ExpectTextCommand) Pattern() string { return `expect element (.+) to have text (.+)` }

// Description returns a brief description of what the command does.
func (c *ExpectTextCommand) Description() string {
	return "Assert an element's visible text or value"
}

// Usage returns the statement syntax.
func (c *ExpectTextCommand) Usage() string {
	return "expect element <selector> to have text <token>"
}

// Execute passes when the element's text, or failing that its value,
// matches the expected token.
func (c *ExpectTextCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	return expectElement(ctx, params[0], params[1], "text", behavetypes.Browser.Text)
}

// ExpectContentCommand implements "expect element <sel> to have content <token>".
type ExpectContentCommand struct{}

// Name returns the command name "expect-content".
func (c *ExpectContentCommand) Name() string { return "expect-content" }

// Pattern returns the line pattern.
func (c *ExpectContentCommand) Pattern() string {
	return `expect element (.+) to have content (.+)`
}

// Description returns a brief description of what the command does.
func (c *ExpectContentCommand) Description() string {
	return "Assert an element's inner HTML or value"
}

// Usage returns the statement syntax.
func (c *ExpectContentCommand) Usage() string {
	return "expect element <selector> to have content <token>"
}

// Execute passes when the element's inner HTML, or failing that its value,
// matches the expected token.
func (c *ExpectContentCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	return expectElement(ctx, params[0], params[1], "content", behavetypes.Browser.InnerHTML)
}

type elementReader func(b behavetypes.Browser, ctx context.Context, loc behavetypes.Locator) (string, error)

func expectElement(ctx behavetypes.ExecutionContext, address, token, what string, read elementReader) error {
	want, err := ctx.Resolve(token, true)
	if err != nil {
		return err
	}
	b, loc, err := element(ctx, address)
	if err != nil {
		return err
	}

	got, err := read(b, ctx.Context(), loc)
	if err != nil {
		return err
	}
	if want.Matches(got) {
		return nil
	}
	value, err := b.Value(ctx.Context(), loc)
	if err != nil {
		return err
	}
	if want.Matches(value) {
		return nil
	}

	msg := fmt.Sprintf("expected element to have %s %s. Instead it had %s of %q and value of %q", what, want, what, got, value)
	if !want.IsRegex() {
		msg += "; diff: " + describeDiff(want.Text, got)
	}
	return fmt.Errorf("%s: %w", msg, behavetypes.ErrAssertion)
}

// ExpectExistsCommand implements "expect element <sel> to (not exist|exist)".
type ExpectExistsCommand struct{}

// Name returns the command name "expect-exists".
func (c *ExpectExistsCommand) Name() string { return "expect-exists" }

// Pattern returns the line pattern.
func (c *ExpectExistsCommand) Pattern() string { return `expect element (.+) to (not exist|exist)` }

// Description returns a brief description of what the command does.
func (c *ExpectExistsCommand) Description() string {
	return "Assert an element is present or absent"
}

// Usage returns the statement syntax.
func (c *ExpectExistsCommand) Usage() string {
	return "expect element <selector> to exist | to not exist"
}

// Execute checks presence without waiting.
func (c *ExpectExistsCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	b, loc, err := element(ctx, params[0])
	if err != nil {
		return err
	}
	n, err := b.Count(ctx.Context(), loc)
	if err != nil {
		return err
	}

	if params[1] == "exist" && n == 0 {
		return fmt.Errorf("expected element %s to exist but it did not: %w", loc, behavetypes.ErrAssertion)
	}
	if params[1] == "not exist" && n > 0 {
		return fmt.Errorf("expected element %s to not exist but it did: %w", loc, behavetypes.ErrAssertion)
	}
	return nil
}

// ExpectCountCommand implements "expect elements <sel> to have count of <n>".
type ExpectCountCommand struct{}

// Name returns the command name "expect-count".
func (c *ExpectCountCommand) Name() string { return "expect-count" }

// Pattern returns the line pattern.
func (c *ExpectCountCommand) Pattern() string { return `expect elements (.+) to have count of (.+)` }

// Description returns a brief description of what the command does.
func (c *ExpectCountCommand) Description() string {
	return "Assert the number of matching elements"
}

// Usage returns the statement syntax.
func (c *ExpectCountCommand) Usage() string {
	return "expect elements <selector> to have count of <n>"
}

// Execute compares the element count.
func (c *ExpectCountCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	raw, err := ctx.ResolveText(params[1])
	if err != nil {
		return err
	}
	want, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", raw, behavetypes.ErrResource)
	}

	b, loc, err := element(ctx, params[0])
	if err != nil {
		return err
	}
	got, err := b.Count(ctx.Context(), loc)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %d elements matching %s but found %d: %w", want, loc, got, behavetypes.ErrAssertion)
	}
	return nil
}

// ExpectVariableCommand implements "expect variable <name> to match <token>".
type ExpectVariableCommand struct{}

// Name returns the command name "expect-variable".
func (c *ExpectVariableCommand) Name() string { return "expect-variable" }

// Pattern returns the line pattern.
func (c *ExpectVariableCommand) Pattern() string { return `expect variable (.+) to match (.+)` }

// Description returns a brief description of what the command does.
func (c *ExpectVariableCommand) Description() string {
	return "Assert a variable equals a value or matches a regex"
}

// Usage returns the statement syntax.
func (c *ExpectVariableCommand) Usage() string {
	return "expect variable <name> to match <token-or-/regex/>"
}

// Execute compares the variable against the resolved token.
func (c *ExpectVariableCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	name := variableName(params[0])
	got, err := ctx.GetVariable(name)
	if err != nil {
		return err
	}
	want, err := ctx.Resolve(params[1], true)
	if err != nil {
		return err
	}
	if want.Matches(got) {
		return nil
	}

	msg := fmt.Sprintf("expected variable %s to match %s but it was %q", name, want, got)
	if !want.IsRegex() {
		msg += "; diff: " + describeDiff(want.Text, got)
	}
	return fmt.Errorf("%s: %w", msg, behavetypes.ErrAssertion)
}
