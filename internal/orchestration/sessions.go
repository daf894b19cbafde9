package orchestration

import (
	"fmt"

	"webbehave/internal/logger"
	"webbehave/pkg/behavetypes"
)

// Browser returns the session the active pointer refers to.
func (r *Runner) Browser() (behavetypes.Browser, error) {
	return r.run.ActiveBrowser()
}

// OpenSession launches browserName under name. Opening a name that is
// already open is a no-op.
func (r *Runner) OpenSession(browserName, name string) error {
	if name == "" {
		name = behavetypes.DefaultSessionName
	}
	if _, ok := r.run.Session(name); ok {
		logger.SessionOperation("open skipped", name, "reason", "already open")
		return nil
	}

	b, err := r.launcher.Launch(r.ctx, browserName, r.config)
	if err != nil {
		return err
	}
	if err := r.run.AddSession(name, b); err != nil {
		_ = b.Close()
		return err
	}
	logger.SessionOperation("open", name, "browser", browserName)
	return nil
}

// CloseSession closes the named session, or the active one when name is empty.
func (r *Runner) CloseSession(name string) error {
	if name == "" {
		name = r.run.ActiveSessionName()
		if name == "" {
			return fmt.Errorf("no browser is open: %w", behavetypes.ErrResource)
		}
	}
	return r.closeSession(name)
}

func (r *Runner) closeSession(name string) error {
	b, err := r.run.RemoveSession(name)
	if err != nil {
		return err
	}
	if err := b.Close(); err != nil {
		return fmt.Errorf("failed to close browser %s: %w", name, err)
	}
	logger.SessionOperation("close", name)
	return nil
}

// SetActiveSession points the active pointer at an open session.
func (r *Runner) SetActiveSession(name string) error {
	return r.run.SetActiveSession(name)
}
