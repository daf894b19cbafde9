package behavetypes

import (
	"context"
	"fmt"
)

// LocatorStrategy selects how a Locator's value is interpreted by the backend.
type LocatorStrategy int

const (
	// StrategyCSS interprets the value as a CSS selector.
	StrategyCSS LocatorStrategy = iota
	// StrategyXPath interprets the value as an XPath expression.
	StrategyXPath
	// StrategyID matches the element whose id attribute equals the value.
	StrategyID
)

// String returns a human-readable representation of the strategy.
func (s LocatorStrategy) String() string {
	switch s {
	case StrategyCSS:
		return "css"
	case StrategyXPath:
		return "xpath"
	case StrategyID:
		return "id"
	default:
		return "unknown"
	}
}

// ParseLocatorStrategy maps a strategy name back to its value.
func ParseLocatorStrategy(name string) (LocatorStrategy, bool) {
	switch name {
	case "css":
		return StrategyCSS, true
	case "xpath":
		return StrategyXPath, true
	case "id":
		return StrategyID, true
	default:
		return StrategyCSS, false
	}
}

// Locator is the backend-neutral description of how to find page elements.
type Locator struct {
	Strategy LocatorStrategy
	Value    string
}

// CSS builds a CSS locator.
func CSS(value string) Locator { return Locator{Strategy: StrategyCSS, Value: value} }

// XPath builds an XPath locator.
func XPath(value string) Locator { return Locator{Strategy: StrategyXPath, Value: value} }

// ID builds an id-attribute locator.
func ID(value string) Locator { return Locator{Strategy: StrategyID, Value: value} }

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}

// Browser is the narrow capability interface the interpreter drives.
// Element operations block until the element is present or ctx expires.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Reload(ctx context.Context) error

	SendKeys(ctx context.Context, loc Locator, text string) error
	Click(ctx context.Context, loc Locator) error
	// ClickOffset clicks at (x, y) pixels relative to the element's centre.
	ClickOffset(ctx context.Context, loc Locator, x, y int) error
	WaitLocated(ctx context.Context, loc Locator) error

	Text(ctx context.Context, loc Locator) (string, error)
	Value(ctx context.Context, loc Locator) (string, error)
	InnerHTML(ctx context.Context, loc Locator) (string, error)
	// Count returns the number of matching elements without waiting.
	Count(ctx context.Context, loc Locator) (int, error)

	// Screenshot returns a PNG of the current viewport.
	Screenshot(ctx context.Context) ([]byte, error)
	// SwitchToWindow rebinds the session to its index-th page target.
	SwitchToWindow(ctx context.Context, index int) error
	// Close releases the backend resources held by the session.
	Close() error
}

// Launcher opens new browser sessions.
type Launcher interface {
	Launch(ctx context.Context, browserName string, cfg RunConfig) (Browser, error)
}

// Clipboard is the OS clipboard as seen by the clipboard special variable.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}
