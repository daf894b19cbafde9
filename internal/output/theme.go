package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ThemeStyleProvider renders semantic output with lipgloss styles.
type ThemeStyleProvider struct {
	profile termenv.Profile
	styles  map[string]lipgloss.Style
}

// lipglossStyle narrows lipgloss.Style's variadic Render to TextStyle.
type lipglossStyle struct {
	lipgloss.Style
}

func (s lipglossStyle) Render(text string) string {
	return s.Style.Render(text)
}

// NewThemeStyleProvider builds a provider whose availability follows the
// colour profile termenv detects for w.
func NewThemeStyleProvider(w io.Writer) *ThemeStyleProvider {
	return newThemeStyleProvider(lipgloss.NewRenderer(w))
}

func newThemeStyleProvider(renderer *lipgloss.Renderer) *ThemeStyleProvider {
	base := renderer.NewStyle()

	return &ThemeStyleProvider{
		profile: renderer.ColorProfile(),
		styles: map[string]lipgloss.Style{
			string(SemanticInfo):      base.Foreground(lipgloss.Color("39")),
			string(SemanticSuccess):   base.Bold(true).Foreground(lipgloss.Color("46")),
			string(SemanticWarning):   base.Foreground(lipgloss.Color("214")),
			string(SemanticFailure):   base.Bold(true).Foreground(lipgloss.Color("196")),
			string(SemanticDetail):    base.PaddingLeft(2).Foreground(lipgloss.Color("245")),
			string(SemanticHighlight): base.Bold(true),
		},
	}
}

// GetStyle implements StyleProvider.GetStyle.
func (t *ThemeStyleProvider) GetStyle(semantic string) TextStyle {
	if style, ok := t.styles[semantic]; ok {
		return lipglossStyle{style}
	}
	return NewPlainTextStyle("")
}

// IsAvailable reports whether the writer supports any colour.
func (t *ThemeStyleProvider) IsAvailable() bool {
	return t.profile != termenv.Ascii
}
