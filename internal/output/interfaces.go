// Package output provides the console reporting layer for webbehave runs.
// It uses dependency injection to support optional styling while keeping the
// report lines themselves stable for scripts and tests that parse them.
package output

// StyleProvider supplies styles for semantic output types.
// The output package depends only on this interface, not on a concrete theme.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type.
	GetStyle(semantic string) TextStyle

	// IsAvailable returns true if the provider can render styles.
	// The printer falls back to plain text otherwise.
	IsAvailable() bool
}

// TextStyle represents the capability to render text with styling.
// Themed styles adapt lipgloss.Style to it.
type TextStyle interface {
	Render(text string) string
}

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	// SemanticPlain represents plain text without any semantic meaning.
	SemanticPlain SemanticType = "plain"
	// SemanticInfo represents informational text such as test start lines.
	SemanticInfo SemanticType = "info"
	// SemanticSuccess represents a passing test.
	SemanticSuccess SemanticType = "success"
	// SemanticWarning represents soft errors such as unhandled lines.
	SemanticWarning SemanticType = "warning"
	// SemanticFailure represents a failing test or action.
	SemanticFailure SemanticType = "failure"
	// SemanticDetail represents indented diagnostic lines under a failure.
	SemanticDetail SemanticType = "detail"
	// SemanticHighlight represents emphasized text such as the run summary.
	SemanticHighlight SemanticType = "highlight"
)
