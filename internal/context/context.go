// Package context holds the state of one script execution: the variable
// store, the run ledger, the browser session table and the active marker.
// A RunContext is owned by the run orchestrator; handlers reach it only
// through the orchestrator's execution context.
package context

import (
	"sync"

	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

// RunContext is the mutable interpreter state of a single run.
type RunContext struct {
	mu sync.RWMutex

	variables map[string]string
	clipboard behavetypes.Clipboard
	testMode  bool

	// Run ledger: names of completed tests in completion order
	ledger []string

	// Session table
	sessions      map[string]behavetypes.Browser
	sessionOrder  []string
	activeSession string

	marker behavetypes.Marker
}

// New creates a RunContext whose clipboard variable is backed by clip.
func New(clip behavetypes.Clipboard) *RunContext {
	ctx := &RunContext{
		variables: make(map[string]string),
		clipboard: clip,
		sessions:  make(map[string]behavetypes.Browser),
	}
	ctx.variables[TodayDateVariable] = testutils.TodayDate(ctx)
	return ctx
}

// SetTestMode toggles deterministic generated values.
func (ctx *RunContext) SetTestMode(testMode bool) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.testMode = testMode
	ctx.variables[TodayDateVariable] = testutils.TodayDate(testutils.StaticMode(testMode))
}

// IsTestMode reports whether deterministic generated values are in use.
func (ctx *RunContext) IsTestMode() bool {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.testMode
}

// Marker returns the active test/action marker.
func (ctx *RunContext) Marker() behavetypes.Marker {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.marker
}

// SetMarker replaces the active marker and returns the previous one so the
// caller can restore it.
func (ctx *RunContext) SetMarker(m behavetypes.Marker) behavetypes.Marker {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	prev := ctx.marker
	ctx.marker = m
	return prev
}

// RecordExecuted appends a completed test to the run ledger.
func (ctx *RunContext) RecordExecuted(name string) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.ledger = append(ctx.ledger, name)
}

// HasExecuted reports whether the ledger records the test.
func (ctx *RunContext) HasExecuted(name string) bool {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	for _, n := range ctx.ledger {
		if n == name {
			return true
		}
	}
	return false
}

// ExecutedTests returns a copy of the run ledger.
func (ctx *RunContext) ExecutedTests() []string {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return append([]string(nil), ctx.ledger...)
}
