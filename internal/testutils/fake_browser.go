package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"webbehave/pkg/behavetypes"
)

// FakeElement is one element of the fake page.
type FakeElement struct {
	Text      string
	Value     string
	InnerHTML string
}

// FakeBrowser is an in-memory behavetypes.Browser. Elements are keyed by
// their locator, so tests register exactly the locators their scripts use.
type FakeBrowser struct {
	mu sync.Mutex

	BrowserName string
	URL         string
	PageTitle   string
	// TitleFor sets the page title after navigating to a URL.
	TitleFor map[string]string
	Elements map[behavetypes.Locator][]*FakeElement
	Windows  int
	Window   int
	Closed   bool
	PNG      []byte

	// Fail makes the named method return the given error.
	Fail  map[string]error
	calls []string
}

// NewFakeBrowser returns a browser on about:blank with a single window.
func NewFakeBrowser(name string) *FakeBrowser {
	return &FakeBrowser{
		BrowserName: name,
		URL:         "about:blank",
		TitleFor:    make(map[string]string),
		Elements:    make(map[behavetypes.Locator][]*FakeElement),
		Windows:     1,
		PNG:         []byte("\x89PNG fake"),
		Fail:        make(map[string]error),
	}
}

// SetElement registers the elements a locator matches.
func (f *FakeBrowser) SetElement(loc behavetypes.Locator, els ...*FakeElement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Elements[loc] = els
}

// RemoveElement makes the locator match nothing.
func (f *FakeBrowser) RemoveElement(loc behavetypes.Locator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Elements, loc)
}

// Calls returns the recorded backend calls.
func (f *FakeBrowser) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeBrowser) record(method string, format string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := method
	if format != "" {
		entry += " " + fmt.Sprintf(format, args...)
	}
	f.calls = append(f.calls, entry)
	if f.Closed {
		return fmt.Errorf("browser %s is closed: %w", f.BrowserName, behavetypes.ErrResource)
	}
	return f.Fail[method]
}

func (f *FakeBrowser) first(loc behavetypes.Locator) (*FakeElement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	els := f.Elements[loc]
	if len(els) == 0 {
		return nil, fmt.Errorf("waiting for %s: %w", loc, behavetypes.ErrTimeout)
	}
	return els[0], nil
}

// Navigate implements behavetypes.Browser.
func (f *FakeBrowser) Navigate(_ context.Context, url string) error {
	if err := f.record("navigate", "%s", url); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.URL = url
	if title, ok := f.TitleFor[url]; ok {
		f.PageTitle = title
	}
	return nil
}

// CurrentURL implements behavetypes.Browser.
func (f *FakeBrowser) CurrentURL(_ context.Context) (string, error) {
	if err := f.record("url", ""); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.URL, nil
}

// Title implements behavetypes.Browser.
func (f *FakeBrowser) Title(_ context.Context) (string, error) {
	if err := f.record("title", ""); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PageTitle, nil
}

// Reload implements behavetypes.Browser.
func (f *FakeBrowser) Reload(_ context.Context) error {
	return f.record("reload", "")
}

// SendKeys implements behavetypes.Browser.
func (f *FakeBrowser) SendKeys(_ context.Context, loc behavetypes.Locator, text string) error {
	if err := f.record("type", "%s %q", loc, text); err != nil {
		return err
	}
	el, err := f.first(loc)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	el.Value += strings.TrimSuffix(text, "\r")
	return nil
}

// Click implements behavetypes.Browser.
func (f *FakeBrowser) Click(_ context.Context, loc behavetypes.Locator) error {
	if err := f.record("click", "%s", loc); err != nil {
		return err
	}
	_, err := f.first(loc)
	return err
}

// ClickOffset implements behavetypes.Browser.
func (f *FakeBrowser) ClickOffset(_ context.Context, loc behavetypes.Locator, x, y int) error {
	if err := f.record("click", "%s (%d,%d)", loc, x, y); err != nil {
		return err
	}
	_, err := f.first(loc)
	return err
}

// WaitLocated implements behavetypes.Browser.
func (f *FakeBrowser) WaitLocated(_ context.Context, loc behavetypes.Locator) error {
	if err := f.record("wait", "%s", loc); err != nil {
		return err
	}
	_, err := f.first(loc)
	return err
}

// Text implements behavetypes.Browser.
func (f *FakeBrowser) Text(_ context.Context, loc behavetypes.Locator) (string, error) {
	if err := f.record("text", "%s", loc); err != nil {
		return "", err
	}
	el, err := f.first(loc)
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

// Value implements behavetypes.Browser.
func (f *FakeBrowser) Value(_ context.Context, loc behavetypes.Locator) (string, error) {
	if err := f.record("value", "%s", loc); err != nil {
		return "", err
	}
	el, err := f.first(loc)
	if err != nil {
		return "", err
	}
	return el.Value, nil
}

// InnerHTML implements behavetypes.Browser.
func (f *FakeBrowser) InnerHTML(_ context.Context, loc behavetypes.Locator) (string, error) {
	if err := f.record("html", "%s", loc); err != nil {
		return "", err
	}
	el, err := f.first(loc)
	if err != nil {
		return "", err
	}
	return el.InnerHTML, nil
}

// Count implements behavetypes.Browser.
func (f *FakeBrowser) Count(_ context.Context, loc behavetypes.Locator) (int, error) {
	if err := f.record("count", "%s", loc); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Elements[loc]), nil
}

// Screenshot implements behavetypes.Browser.
func (f *FakeBrowser) Screenshot(_ context.Context) ([]byte, error) {
	if err := f.record("screenshot", ""); err != nil {
		return nil, err
	}
	return f.PNG, nil
}

// SwitchToWindow implements behavetypes.Browser.
func (f *FakeBrowser) SwitchToWindow(_ context.Context, index int) error {
	if err := f.record("window", "%d", index); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= f.Windows {
		return fmt.Errorf("window %d out of range (%d open): %w", index, f.Windows, behavetypes.ErrResource)
	}
	f.Window = index
	return nil
}

// Close implements behavetypes.Browser.
func (f *FakeBrowser) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "close")
	f.Closed = true
	return nil
}

// FakeLauncher hands out FakeBrowsers and records every launch.
type FakeLauncher struct {
	mu sync.Mutex

	// Setup is applied to every browser before it is returned.
	Setup    func(*FakeBrowser)
	Err      error
	Launched []*FakeBrowser
}

// NewFakeLauncher returns a launcher applying setup to each new browser.
func NewFakeLauncher(setup func(*FakeBrowser)) *FakeLauncher {
	return &FakeLauncher{Setup: setup}
}

// Launch implements behavetypes.Launcher.
func (l *FakeLauncher) Launch(_ context.Context, browserName string, _ behavetypes.RunConfig) (behavetypes.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	b := NewFakeBrowser(browserName)
	if l.Setup != nil {
		l.Setup(b)
	}
	l.Launched = append(l.Launched, b)
	return b, nil
}

// Last returns the most recently launched browser.
func (l *FakeLauncher) Last() *FakeBrowser {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.Launched) == 0 {
		return nil
	}
	return l.Launched[len(l.Launched)-1]
}

// MemoryClipboard is an in-memory behavetypes.Clipboard.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

// Read implements behavetypes.Clipboard.
func (c *MemoryClipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

// Write implements behavetypes.Clipboard.
func (c *MemoryClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}
