package behavetypes

import "time"

// RunState represents the orchestrator's current phase.
type RunState int

const (
	// StateIdle - nothing has executed yet
	StateIdle RunState = iota
	// StateRunningPreamble - executing lines before the first block
	StateRunningPreamble
	// StateRunningBeforeAll - executing before-all hooks
	StateRunningBeforeAll
	// StateRunningTests - executing the selected tests
	StateRunningTests
	// StateRunningAfterAll - executing after-all hooks
	StateRunningAfterAll
	// StateRunningEpilogue - executing lines after the last block
	StateRunningEpilogue
	// StateDone - the run finished
	StateDone
)

// String returns a human-readable representation of the run state.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunningPreamble:
		return "RunningPreamble"
	case StateRunningBeforeAll:
		return "RunningBeforeAll"
	case StateRunningTests:
		return "RunningTests"
	case StateRunningAfterAll:
		return "RunningAfterAll"
	case StateRunningEpilogue:
		return "RunningEpilogue"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// MarkerKind says whether the active marker names a test or an action.
type MarkerKind int

const (
	// MarkerNone means no block is active.
	MarkerNone MarkerKind = iota
	// MarkerTest means a test is active.
	MarkerTest
	// MarkerAction means an action is active.
	MarkerAction
)

// Marker names the innermost executing test or action. Failures are
// attributed to it.
type Marker struct {
	Kind MarkerKind
	Name string
}

// Active reports whether the marker names a block.
func (m Marker) Active() bool {
	return m.Kind != MarkerNone
}

// Label returns "Test NAME" or "Action NAME".
func (m Marker) Label() string {
	switch m.Kind {
	case MarkerTest:
		return "Test " + m.Name
	case MarkerAction:
		return "Action " + m.Name
	default:
		return ""
	}
}

// DefaultSessionName is used when open is given no explicit session name.
const DefaultSessionName = "default"

// RunConfig holds the runtime settings of one script execution.
type RunConfig struct {
	// Headless launches browsers without a visible window.
	Headless bool
	// WaitTimeout bounds every backend wait.
	WaitTimeout time.Duration
	// PollInterval is the polling period for title waits.
	PollInterval time.Duration
	// ScreenshotOnFailure captures the active session when a block fails.
	ScreenshotOnFailure bool
	// ScreenshotDir receives captured screenshots.
	ScreenshotDir string
	// RecursionLimit caps nested run test / require test / run action depth.
	RecursionLimit int
	// TestMode makes generated values deterministic.
	TestMode bool
}

// DefaultRunConfig returns the default run configuration.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Headless:            true,
		WaitTimeout:         10 * time.Second,
		PollInterval:        100 * time.Millisecond,
		ScreenshotOnFailure: true,
		ScreenshotDir:       "screenshots",
		RecursionLimit:      50,
	}
}

// TestResult records the outcome of one wrapped test execution.
type TestResult struct {
	Name   string
	Passed bool
	Err    error
}
