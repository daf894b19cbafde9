// Package browser drives Chrome over the DevTools protocol. It is the only
// package that imports chromedp; the interpreter sees it through the
// behavetypes.Browser and behavetypes.Launcher interfaces.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"webbehave/internal/logger"
	"webbehave/pkg/behavetypes"
)

// ChromeLauncher starts a local Chrome or Chromium per session.
type ChromeLauncher struct {
	// ExecPath overrides browser discovery when set.
	ExecPath string
	log      *log.Logger
}

// NewChromeLauncher returns a launcher using the default Chrome lookup.
func NewChromeLauncher() *ChromeLauncher {
	return &ChromeLauncher{log: logger.NewStyledLogger("Browser")}
}

// Launch implements behavetypes.Launcher.
func (l *ChromeLauncher) Launch(ctx context.Context, browserName string, cfg behavetypes.RunConfig) (behavetypes.Browser, error) {
	forceHeadless, err := parseBrowserName(browserName)
	if err != nil {
		return nil, err
	}
	headless := cfg.Headless || forceHeadless

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(headless, l.ExecPath)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(l.log.Debugf),
		chromedp.WithErrorf(l.log.Errorf),
	)

	// The first Run allocates the browser and must not carry a deadline.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start %s: %v: %w", browserName, err, behavetypes.ErrResource)
	}

	l.log.Debug("Browser started", "name", browserName, "headless", headless)
	return &chromeBrowser{
		name:        browserName,
		wait:        cfg.WaitTimeout,
		allocCancel: allocCancel,
		root:        tabCtx,
		rootCancel:  tabCancel,
		tab:         tabCtx,
		log:         l.log,
	}, nil
}

// parseBrowserName validates a browser name and reports whether it forces
// headless mode.
func parseBrowserName(name string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chrome", "chromium":
		return false, nil
	case "headless chrome":
		return true, nil
	default:
		return false, fmt.Errorf("unsupported browser %q: %w", name, behavetypes.ErrResource)
	}
}

func allocatorOptions(headless bool, execPath string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	return opts
}

// chromeBrowser is one browser process. root owns the process; tab is the
// page target currently driven, which changes on SwitchToWindow.
type chromeBrowser struct {
	mu   sync.Mutex
	name string
	wait time.Duration

	allocCancel context.CancelFunc
	root        context.Context
	rootCancel  context.CancelFunc
	tab         context.Context
	tabCancels  []context.CancelFunc

	log *log.Logger
}

// run executes actions against the current tab, bounded by the wait timeout
// and by the caller's ctx.
func (b *chromeBrowser) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	b.mu.Lock()
	tab := b.tab
	b.mu.Unlock()

	runCtx, cancel := context.WithTimeout(tab, b.wait)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return translateError(op, b.wait, err)
}

// translateError maps chromedp failures onto the interpreter's error kinds.
func translateError(op string, wait time.Duration, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s did not complete within %s: %w", op, wait, behavetypes.ErrTimeout)
	default:
		return fmt.Errorf("%s failed: %w", op, err)
	}
}

// queryOptions selects the chromedp query mode for a locator. all is set for
// queries that may match more than one node.
func queryOptions(loc behavetypes.Locator, all bool) []chromedp.QueryOption {
	switch loc.Strategy {
	case behavetypes.StrategyXPath:
		return []chromedp.QueryOption{chromedp.BySearch}
	case behavetypes.StrategyID:
		return []chromedp.QueryOption{chromedp.ByID}
	default:
		if all {
			return []chromedp.QueryOption{chromedp.ByQueryAll}
		}
		return []chromedp.QueryOption{chromedp.ByQuery}
	}
}

// Navigate implements behavetypes.Browser.
func (b *chromeBrowser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, "navigate to "+url, chromedp.Navigate(url))
}

// CurrentURL implements behavetypes.Browser.
func (b *chromeBrowser) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := b.run(ctx, "read location", chromedp.Location(&url))
	return url, err
}

// Title implements behavetypes.Browser.
func (b *chromeBrowser) Title(ctx context.Context) (string, error) {
	var title string
	err := b.run(ctx, "read title", chromedp.Title(&title))
	return title, err
}

// Reload implements behavetypes.Browser.
func (b *chromeBrowser) Reload(ctx context.Context) error {
	return b.run(ctx, "reload", chromedp.Reload())
}

// SendKeys implements behavetypes.Browser.
func (b *chromeBrowser) SendKeys(ctx context.Context, loc behavetypes.Locator, text string) error {
	return b.run(ctx, "type into "+loc.String(),
		chromedp.SendKeys(loc.Value, text, queryOptions(loc, false)...))
}

// Click implements behavetypes.Browser.
func (b *chromeBrowser) Click(ctx context.Context, loc behavetypes.Locator) error {
	return b.run(ctx, "click "+loc.String(),
		chromedp.Click(loc.Value, append(queryOptions(loc, false), chromedp.NodeVisible)...))
}

// ClickOffset implements behavetypes.Browser.
func (b *chromeBrowser) ClickOffset(ctx context.Context, loc behavetypes.Locator, x, y int) error {
	var box *dom.BoxModel
	return b.run(ctx, fmt.Sprintf("click %s at offset (%d, %d)", loc, x, y),
		chromedp.Dimensions(loc.Value, &box, queryOptions(loc, false)...),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cx, cy, err := offsetPoint(box, x, y)
			if err != nil {
				return err
			}
			return chromedp.MouseClickXY(cx, cy).Do(ctx)
		}),
	)
}

// offsetPoint returns the viewport point x, y pixels from the centre of the
// element's content quad.
func offsetPoint(box *dom.BoxModel, x, y int) (float64, float64, error) {
	if box == nil || len(box.Content) < 8 {
		return 0, 0, fmt.Errorf("element has no layout box: %w", behavetypes.ErrResource)
	}
	var sx, sy float64
	for i := 0; i < 8; i += 2 {
		sx += box.Content[i]
		sy += box.Content[i+1]
	}
	return sx/4 + float64(x), sy/4 + float64(y), nil
}

// WaitLocated implements behavetypes.Browser.
func (b *chromeBrowser) WaitLocated(ctx context.Context, loc behavetypes.Locator) error {
	return b.run(ctx, "locate "+loc.String(),
		chromedp.WaitReady(loc.Value, queryOptions(loc, false)...))
}

// Text implements behavetypes.Browser.
func (b *chromeBrowser) Text(ctx context.Context, loc behavetypes.Locator) (string, error) {
	var text string
	err := b.run(ctx, "read text of "+loc.String(),
		chromedp.Text(loc.Value, &text, queryOptions(loc, false)...))
	return text, err
}

// Value implements behavetypes.Browser.
func (b *chromeBrowser) Value(ctx context.Context, loc behavetypes.Locator) (string, error) {
	var value string
	err := b.run(ctx, "read value of "+loc.String(),
		chromedp.Value(loc.Value, &value, queryOptions(loc, false)...))
	return value, err
}

// InnerHTML implements behavetypes.Browser.
func (b *chromeBrowser) InnerHTML(ctx context.Context, loc behavetypes.Locator) (string, error) {
	var html string
	err := b.run(ctx, "read content of "+loc.String(),
		chromedp.InnerHTML(loc.Value, &html, queryOptions(loc, false)...))
	return html, err
}

// Count implements behavetypes.Browser.
func (b *chromeBrowser) Count(ctx context.Context, loc behavetypes.Locator) (int, error) {
	var nodes []*cdp.Node
	opts := append(queryOptions(loc, true), chromedp.AtLeast(0))
	err := b.run(ctx, "count "+loc.String(), chromedp.Nodes(loc.Value, &nodes, opts...))
	return len(nodes), err
}

// Screenshot implements behavetypes.Browser.
func (b *chromeBrowser) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := b.run(ctx, "capture screenshot", chromedp.CaptureScreenshot(&buf))
	return buf, err
}

// SwitchToWindow implements behavetypes.Browser.
func (b *chromeBrowser) SwitchToWindow(ctx context.Context, index int) error {
	listCtx, cancel := context.WithTimeout(b.root, b.wait)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	infos, err := chromedp.Targets(listCtx)
	if err != nil {
		return translateError("list windows", b.wait, err)
	}
	id, err := pageTarget(infos, index)
	if err != nil {
		return err
	}

	tab, tabCancel := chromedp.NewContext(b.root, chromedp.WithTargetID(id))
	if err := chromedp.Run(tab); err != nil {
		tabCancel()
		return fmt.Errorf("attach to window %d: %w", index, err)
	}

	b.mu.Lock()
	b.tab = tab
	b.tabCancels = append(b.tabCancels, tabCancel)
	b.mu.Unlock()
	b.log.Debug("Switched window", "browser", b.name, "index", index, "target", id)
	return nil
}

// pageTarget returns the id of the index-th page target. Service workers,
// iframes and other target types are not windows.
func pageTarget(infos []*target.Info, index int) (target.ID, error) {
	var pages []target.ID
	for _, info := range infos {
		if info != nil && info.Type == "page" {
			pages = append(pages, info.TargetID)
		}
	}
	if index < 0 || index >= len(pages) {
		return "", fmt.Errorf("window %d out of range (%d open): %w", index, len(pages), behavetypes.ErrResource)
	}
	return pages[index], nil
}

// Close implements behavetypes.Browser.
func (b *chromeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := len(b.tabCancels) - 1; i >= 0; i-- {
		b.tabCancels[i]()
	}
	b.tabCancels = nil

	closeCtx, cancel := context.WithTimeout(b.root, 5*time.Second)
	defer cancel()
	err := chromedp.Cancel(closeCtx)
	b.rootCancel()
	b.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close %s: %w", b.name, err)
	}
	return nil
}
