// Package behavetypes defines the core data types and interfaces shared by the
// webbehave interpreter: blocks, locators, the browser capability interface
// and the execution context handed to every command handler.
package behavetypes

import "context"

// Handler executes one matched script line. Params holds the pattern's
// capture groups in order.
type Handler func(ctx ExecutionContext, params []string) error

// Service is the lifecycle interface implemented by every interpreter service.
type Service interface {
	// Name returns the unique service name used for registry lookups.
	Name() string
	// Initialize prepares the service for use.
	Initialize() error
}

// ExecutionContext is the view of interpreter state that command handlers
// and extension operations work against. It is owned by the run orchestrator
// and only used from the goroutine executing the script.
type ExecutionContext interface {
	// Context returns the context bounding blocking backend calls.
	Context() context.Context
	// Config returns the active run configuration.
	Config() RunConfig

	// Browser returns the session the active pointer refers to.
	Browser() (Browser, error)
	// OpenSession launches browserName under name unless a session of that name exists.
	OpenSession(browserName, name string) error
	// CloseSession closes the named session, or the active one when name is empty.
	CloseSession(name string) error
	// SetActiveSession points the active pointer at an open session.
	SetActiveSession(name string) error

	// Resolve resolves a raw token through the text resolution rules.
	Resolve(token string, allowRegex bool) (ResolvedValue, error)
	// ResolveText resolves a token that must produce plain text.
	ResolveText(token string) (string, error)
	// ResolveSelector turns a type=value address into a locator.
	ResolveSelector(address string) (Locator, error)

	// GetVariable reads a variable, honouring the special names.
	GetVariable(name string) (string, error)
	// SetVariable writes a variable, honouring the special names.
	SetVariable(name, value string) error

	// BeginTest marks name as the active test.
	BeginTest(name string)
	// EndTest reports the active test as successful and clears the marker.
	EndTest()

	// RunTest runs a test unconditionally, wrapped by the each-hooks.
	RunTest(name string) error
	// RequireTest runs a test unless the run ledger already records it.
	RequireTest(name string) error
	// RunAction runs an action's lines with the action as active marker.
	RunAction(name string) error
	// ExecuteLine dispatches a single line.
	ExecuteLine(line string) error
	// ExecuteLines dispatches lines in order, halting on the first failure.
	ExecuteLines(lines []string) error

	// LoadVariables merges a name=value file into the variable store.
	LoadVariables(path string) error
	// LoadExtension loads a JavaScript extension module.
	LoadExtension(path string) error

	// Print writes a line to the run's console output.
	Print(text string)
	// Screenshot captures the active session and returns the saved path.
	Screenshot(label string) (string, error)
}
