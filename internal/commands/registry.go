// Package commands provides the ordered pattern registry that maps script
// lines to handlers.
package commands

import (
	"fmt"
	"regexp"
	"sync"

	"webbehave/pkg/behavetypes"
)

// Registration binds a whole-line pattern to its handler.
type Registration struct {
	Pattern     string
	Name        string
	Description string
	Usage       string
	Handler     behavetypes.Handler

	re *regexp.Regexp
}

// Registry is an ordered list of registrations. Lines are matched against
// registrations in order and the first match wins.
type Registry struct {
	mu      sync.RWMutex
	entries []*Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// compile anchors pattern to the full line.
func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid command pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Register appends a pattern, or replaces the handler of a registration whose
// pattern string is identical, keeping that registration's position.
func (r *Registry) Register(pattern string, handler behavetypes.Handler) error {
	return r.add(&Registration{Pattern: pattern, Name: pattern, Handler: handler})
}

// RegisterCommand registers a built-in command under its pattern.
func (r *Registry) RegisterCommand(cmd behavetypes.Command) error {
	return r.add(&Registration{
		Pattern:     cmd.Pattern(),
		Name:        cmd.Name(),
		Description: cmd.Description(),
		Usage:       cmd.Usage(),
		Handler:     cmd.Execute,
	})
}

func (r *Registry) add(reg *Registration) error {
	if reg.Pattern == "" {
		return fmt.Errorf("command pattern cannot be empty")
	}
	if reg.Handler == nil {
		return fmt.Errorf("command %q has no handler", reg.Pattern)
	}

	re, err := compile(reg.Pattern)
	if err != nil {
		return err
	}
	reg.re = re

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.entries {
		if existing.Pattern == reg.Pattern {
			r.entries[i] = reg
			return nil
		}
	}
	r.entries = append(r.entries, reg)
	return nil
}

// Resolve finds the first registration matching line and returns it with
// the captured groups.
func (r *Registry) Resolve(line string) (*Registration, []string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reg := range r.entries {
		if m := reg.re.FindStringSubmatch(line); m != nil {
			return reg, m[1:], true
		}
	}
	return nil, nil, false
}

// Patterns returns the registered patterns in evaluation order.
func (r *Registry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := make([]string, len(r.entries))
	for i, reg := range r.entries {
		patterns[i] = reg.Pattern
	}
	return patterns
}
