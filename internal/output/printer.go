package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// Printer writes the run report. Report lines such as "Test X - SUCCESS" are
// printed verbatim in plain mode so they stay machine-readable.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	forcePlain    bool
	testMode      bool

	mu sync.Mutex
}

// NewPrinter creates a new Printer with the given options.
// By default, it writes plain text to os.Stdout.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Println outputs text with a newline without any semantic styling.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text)
}

// Printf outputs a formatted line without any semantic styling.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.output(SemanticPlain, fmt.Sprintf(format, args...))
}

// Info outputs informational text.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text)
}

// Success outputs a passing result.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text)
}

// Warning outputs a soft error.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text)
}

// Failure outputs a failing result.
func (p *Printer) Failure(text string) {
	p.output(SemanticFailure, text)
}

// Detail outputs an indented diagnostic line. Multi-line text is indented
// line by line.
func (p *Printer) Detail(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		p.output(SemanticDetail, line)
	}
}

// Summary outputs the closing pass/fail tally.
func (p *Printer) Summary(passed, failed int) {
	text := fmt.Sprintf("%d passed, %d failed", passed, failed)
	p.output(SemanticHighlight, text)
}

func (p *Printer) output(semantic SemanticType, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprint(p.writer, p.renderText(semantic, text))
}

// renderText renders text with the provider's style, or plain when none applies.
func (p *Printer) renderText(semantic SemanticType, text string) string {
	var result string
	if p.IsStylable() {
		result = p.styleProvider.GetStyle(string(semantic)).Render(text)
	} else {
		result = NewPlainStyleProvider().GetStyle(string(semantic)).Render(text)
	}

	if p.testMode {
		result = ansi.Strip(result)
	}

	return result + "\n"
}

// IsStylable returns true if the printer can apply styles.
func (p *Printer) IsStylable() bool {
	return !p.forcePlain && p.styleProvider != nil && p.styleProvider.IsAvailable()
}
