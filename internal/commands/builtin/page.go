package builtin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"webbehave/pkg/behavetypes"
)

// element resolves address and returns the active browser with its locator.
func element(ctx behavetypes.ExecutionContext, address string) (behavetypes.Browser, behavetypes.Locator, error) {
	b, err := ctx.Browser()
	if err != nil {
		return nil, behavetypes.Locator{}, err
	}
	loc, err := ctx.ResolveSelector(address)
	if err != nil {
		return nil, behavetypes.Locator{}, err
	}
	return b, loc, nil
}

// NavigateCommand implements "navigate to <url>".
type NavigateCommand struct{}

// Name returns the command name "navigate" for registration and lookup.
func (c *NavigateCommand) Name() string { return "navigate" }

// Pattern returns the line pattern.
func (c *NavigateCommand) Pattern() string { return `navigate to (.+)` }

// Description returns a brief description of what the command does.
func (c *NavigateCommand) Description() string { return "Load a URL in the active session" }

// Usage returns the statement syntax.
func (c *NavigateCommand) Usage() string { return "navigate to <url-token>" }

// Execute resolves the URL token and navigates.
func (c *NavigateCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	url, err := ctx.ResolveText(params[0])
	if err != nil {
		return err
	}
	b, err := ctx.Browser()
	if err != nil {
		return err
	}
	return b.Navigate(ctx.Context(), url)
}

// TypeCommand implements "type <text> into <selector>".
type TypeCommand struct{}

// Name returns the command name "type" for registration and lookup.
func (c *TypeCommand) Name() string { return "type" }

// Pattern returns the line pattern.
func (c *TypeCommand) Pattern() string { return `type (.+) into (.+)` }

// Description returns a brief description of what the command does.
func (c *TypeCommand) Description() string { return "Send keys to an element" }

// Usage returns the statement syntax.
func (c *TypeCommand) Usage() string { return "type <text-token> into <selector>" }

// Execute resolves the text token and sends it to the element.
func (c *TypeCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	text, err := ctx.ResolveText(params[0])
	if err != nil {
		return err
	}
	b, loc, err := element(ctx, params[1])
	if err != nil {
		return err
	}
	return b.SendKeys(ctx.Context(), loc, text)
}

// ClickOffsetCommand implements "click <selector> with offset (x,y)".
type ClickOffsetCommand struct{}

// Name returns the command name "click-offset".
func (c *ClickOffsetCommand) Name() string { return "click-offset" }

// Pattern returns the line pattern.
func (c *ClickOffsetCommand) Pattern() string {
	return `click (.+) with offset \((-?\d+),\s*(-?\d+)\)`
}

// Description returns a brief description of what the command does.
func (c *ClickOffsetCommand) Description() string {
	return "Click at an offset from an element's centre"
}

// Usage returns the statement syntax.
func (c *ClickOffsetCommand) Usage() string { return "click <selector> with offset (x,y)" }

// Execute clicks relative to the element centre.
func (c *ClickOffsetCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	x, err := strconv.Atoi(params[1])
	if err != nil {
		return fmt.Errorf("invalid x offset %s: %w", params[1], behavetypes.ErrResource)
	}
	y, err := strconv.Atoi(params[2])
	if err != nil {
		return fmt.Errorf("invalid y offset %s: %w", params[2], behavetypes.ErrResource)
	}
	b, loc, err := element(ctx, params[0])
	if err != nil {
		return err
	}
	return b.ClickOffset(ctx.Context(), loc, x, y)
}

// ClickCommand implements "click <selector>".
type ClickCommand struct{}

// Name returns the command name "click" for registration and lookup.
func (c *ClickCommand) Name() string { return "click" }

// Pattern returns the line pattern.
func (c *ClickCommand) Pattern() string { return `click (.+)` }

// Description returns a brief description of what the command does.
func (c *ClickCommand) Description() string { return "Click an element" }

// Usage returns the statement syntax.
func (c *ClickCommand) Usage() string { return "click <selector>" }

// Execute clicks the element.
func (c *ClickCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	b, loc, err := element(ctx, params[0])
	if err != nil {
		return err
	}
	return b.Click(ctx.Context(), loc)
}

// WaitForTitleCommand implements `wait for title to be "<title>"`.
type WaitForTitleCommand struct{}

// Name returns the command name "wait-title".
func (c *WaitForTitleCommand) Name() string { return "wait-title" }

// Pattern returns the line pattern.
func (c *WaitForTitleCommand) Pattern() string { return `wait for title to be "(.+)"` }

// Description returns a brief description of what the command does.
func (c *WaitForTitleCommand) Description() string {
	return "Poll the page title until it matches"
}

// Usage returns the statement syntax.
func (c *WaitForTitleCommand) Usage() string { return `wait for title to be "<title>"` }

// Execute polls the title every PollInterval until it equals the expected
// title or WaitTimeout elapses.
func (c *WaitForTitleCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	want := params[0]
	b, err := ctx.Browser()
	if err != nil {
		return err
	}

	cfg := ctx.Config()
	waitCtx, cancel := context.WithTimeout(ctx.Context(), cfg.WaitTimeout)
	defer cancel()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	var last string
	for {
		title, err := b.Title(waitCtx)
		if err == nil && title == want {
			return nil
		}
		if err == nil {
			last = title
		}

		select {
		case <-waitCtx.Done():
			if errors.Is(ctx.Context().Err(), context.Canceled) {
				return ctx.Context().Err()
			}
			return fmt.Errorf("title was %q, expected %q after %s: %w", last, want, cfg.WaitTimeout, behavetypes.ErrTimeout)
		case <-ticker.C:
		}
	}
}

// WaitUntilLocatedCommand implements "wait until located <selector>".
type WaitUntilLocatedCommand struct{}

// Name returns the command name "wait-located".
func (c *WaitUntilLocatedCommand) Name() string { return "wait-located" }

// Pattern returns the line pattern.
func (c *WaitUntilLocatedCommand) Pattern() string { return `wait until located (.+)` }

// Description returns a brief description of what the command does.
func (c *WaitUntilLocatedCommand) Description() string {
	return "Wait for an element to be present"
}

// Usage returns the statement syntax.
func (c *WaitUntilLocatedCommand) Usage() string { return "wait until located <selector>" }

// Execute blocks until the element is present or the backend times out.
func (c *WaitUntilLocatedCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	b, loc, err := element(ctx, params[0])
	if err != nil {
		return err
	}
	return b.WaitLocated(ctx.Context(), loc)
}

// SleepCommand implements "sleep <seconds>".
type SleepCommand struct{}

// Name returns the command name "sleep" for registration and lookup.
func (c *SleepCommand) Name() string { return "sleep" }

// Pattern returns the line pattern.
func (c *SleepCommand) Pattern() string { return `sleep (.+)` }

// Description returns a brief description of what the command does.
func (c *SleepCommand) Description() string { return "Pause for a number of seconds" }

// Usage returns the statement syntax.
func (c *SleepCommand) Usage() string { return "sleep <seconds>" }

// Execute sleeps for the resolved, possibly fractional, number of seconds.
func (c *SleepCommand) Execute(ctx behavetypes.ExecutionContext, params []string) error {
	raw, err := ctx.ResolveText(params[0])
	if err != nil {
		return err
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return fmt.Errorf("invalid sleep duration %q: %w", raw, behavetypes.ErrResource)
	}
	if seconds*float64(time.Second) >= math.MaxInt64 {
		return fmt.Errorf("sleep duration %q out of range: %w", raw, behavetypes.ErrResource)
	}

	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Context().Done():
		return ctx.Context().Err()
	}
}
