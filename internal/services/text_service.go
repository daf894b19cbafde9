package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chromedp/chromedp/kb"

	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

// VariableScope is the variable store as seen by the resolvers.
type VariableScope interface {
	GetVariable(name string) (string, error)
	IsTestMode() bool
}

// keyNames maps symbolic key tokens to the backend's key constants. Matching
// is exact, so "Return" or "END" stay ordinary text.
var keyNames = map[string]string{
	"return":    kb.Enter,
	"tab":       kb.Tab,
	"escape":    kb.Escape,
	"backspace": kb.Backspace,
}

// uuidToken resolves to a fresh identifier on every use.
const uuidToken = "uuid"

// TextService resolves raw script tokens into text or regular expressions.
type TextService struct {
	initialized bool
	scope       VariableScope
}

// NewTextService creates a TextService reading variables from scope.
func NewTextService(scope VariableScope) *TextService {
	return &TextService{scope: scope}
}

// Name returns the service name "text" for registration.
func (t *TextService) Name() string {
	return "text"
}

// Initialize sets up the TextService for operation.
func (t *TextService) Initialize() error {
	if t.scope == nil {
		return fmt.Errorf("text service requires a variable scope")
	}
	t.initialized = true
	return nil
}

// Resolve applies the first matching rule: quoted literal, $variable,
// symbolic key, uuid, /regex/ (when allowRegex), else the token itself.
func (t *TextService) Resolve(token string, allowRegex bool) (behavetypes.ResolvedValue, error) {
	if !t.initialized {
		return behavetypes.ResolvedValue{}, fmt.Errorf("text service not initialized")
	}

	if IsQuoted(token) {
		return behavetypes.ResolvedValue{Text: token[1 : len(token)-1]}, nil
	}

	if strings.HasPrefix(token, "$") {
		value, err := t.scope.GetVariable(token[1:])
		if err != nil {
			return behavetypes.ResolvedValue{}, err
		}
		return behavetypes.ResolvedValue{Text: value}, nil
	}

	if key, ok := keyNames[token]; ok {
		return behavetypes.ResolvedValue{Text: key}, nil
	}

	if token == uuidToken {
		return behavetypes.ResolvedValue{Text: testutils.GenerateUUID(t.scope)}, nil
	}

	if allowRegex && len(token) >= 2 && strings.HasPrefix(token, "/") && strings.HasSuffix(token, "/") {
		re, err := regexp.Compile(token[1 : len(token)-1])
		if err != nil {
			return behavetypes.ResolvedValue{}, fmt.Errorf("invalid regular expression %s: %v: %w", token, err, behavetypes.ErrResource)
		}
		return behavetypes.ResolvedValue{Regex: re}, nil
	}

	return behavetypes.ResolvedValue{Text: token}, nil
}

// ResolveText resolves a token that must produce plain text.
func (t *TextService) ResolveText(token string) (string, error) {
	v, err := t.Resolve(token, false)
	if err != nil {
		return "", err
	}
	return v.Text, nil
}

// IsQuoted reports whether token is wrapped in double quotes.
func IsQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`)
}

// Unquote strips one pair of surrounding double quotes, if present.
func Unquote(token string) string {
	if IsQuoted(token) {
		return token[1 : len(token)-1]
	}
	return token
}
