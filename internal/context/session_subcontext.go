package context

import (
	"fmt"

	"webbehave/internal/logger"
	"webbehave/pkg/behavetypes"
)

// Session returns the browser registered under name.
func (ctx *RunContext) Session(name string) (behavetypes.Browser, bool) {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	b, ok := ctx.sessions[name]
	return b, ok
}

// AddSession registers a browser. The active pointer moves to the new
// session only when it does not already refer to an open one.
func (ctx *RunContext) AddSession(name string, b behavetypes.Browser) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if _, exists := ctx.sessions[name]; exists {
		return fmt.Errorf("session %s already open: %w", name, behavetypes.ErrResource)
	}
	ctx.sessions[name] = b
	ctx.sessionOrder = append(ctx.sessionOrder, name)

	if _, ok := ctx.sessions[ctx.activeSession]; !ok {
		ctx.activeSession = name
	}
	logger.SessionOperation("add", name, "active", ctx.activeSession)
	return nil
}

// RemoveSession drops a session from the table and returns its handle.
// The active pointer is left untouched.
func (ctx *RunContext) RemoveSession(name string) (behavetypes.Browser, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	b, ok := ctx.sessions[name]
	if !ok {
		return nil, fmt.Errorf("no browser session named %s: %w", name, behavetypes.ErrResource)
	}
	delete(ctx.sessions, name)
	for i, n := range ctx.sessionOrder {
		if n == name {
			ctx.sessionOrder = append(ctx.sessionOrder[:i], ctx.sessionOrder[i+1:]...)
			break
		}
	}
	logger.SessionOperation("remove", name)
	return b, nil
}

// SetActiveSession points the active pointer at an open session.
func (ctx *RunContext) SetActiveSession(name string) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if _, ok := ctx.sessions[name]; !ok {
		return fmt.Errorf("no browser session named %s: %w", name, behavetypes.ErrResource)
	}
	ctx.activeSession = name
	logger.SessionOperation("activate", name)
	return nil
}

// ActiveSessionName returns the active pointer, which may name a closed session.
func (ctx *RunContext) ActiveSessionName() string {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.activeSession
}

// ActiveBrowser returns the session the active pointer refers to.
func (ctx *RunContext) ActiveBrowser() (behavetypes.Browser, error) {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()

	if ctx.activeSession == "" {
		return nil, fmt.Errorf("no browser is open: %w", behavetypes.ErrResource)
	}
	b, ok := ctx.sessions[ctx.activeSession]
	if !ok {
		return nil, fmt.Errorf("active browser %s is not open: %w", ctx.activeSession, behavetypes.ErrResource)
	}
	return b, nil
}

// SessionNames returns open session names in opening order.
func (ctx *RunContext) SessionNames() []string {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return append([]string(nil), ctx.sessionOrder...)
}
