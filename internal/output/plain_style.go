package output

// PlainTextStyle implements TextStyle for plain text output without any styling.
type PlainTextStyle struct {
	prefix string
}

// NewPlainTextStyle creates a new plain text style with an optional prefix.
func NewPlainTextStyle(prefix string) *PlainTextStyle {
	return &PlainTextStyle{prefix: prefix}
}

// Render implements TextStyle.Render for plain text output.
func (p *PlainTextStyle) Render(text string) string {
	return p.prefix + text
}

// PlainStyleProvider implements StyleProvider for plain text output.
// Report lines are emitted verbatim; only detail lines are indented.
type PlainStyleProvider struct{}

// NewPlainStyleProvider creates a new plain style provider.
func NewPlainStyleProvider() *PlainStyleProvider {
	return &PlainStyleProvider{}
}

// GetStyle implements StyleProvider.GetStyle.
func (p *PlainStyleProvider) GetStyle(semantic string) TextStyle {
	if semantic == string(SemanticDetail) {
		return NewPlainTextStyle("  ")
	}
	return NewPlainTextStyle("")
}

// IsAvailable implements StyleProvider.IsAvailable.
func (p *PlainStyleProvider) IsAvailable() bool {
	return true
}

func (p *PlainStyleProvider) String() string {
	return "PlainStyleProvider{}"
}
