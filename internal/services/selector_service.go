package services

import (
	"fmt"
	"strings"
	"sync"

	"webbehave/pkg/behavetypes"
)

// maxSelectorRedirects caps builder results that name another address.
const maxSelectorRedirects = 8

// SelectorBuilder turns the value part of a custom address into a locator.
// A builder may instead return a non-empty redirect, another type=value
// address that is resolved in its place.
type SelectorBuilder func(value string) (loc behavetypes.Locator, redirect string, err error)

// SelectorService maps type=value addresses onto locators.
type SelectorService struct {
	initialized bool
	text        *TextService

	mu       sync.RWMutex
	builders map[string]SelectorBuilder
}

// NewSelectorService creates a SelectorService resolving $variables with text.
func NewSelectorService(text *TextService) *SelectorService {
	return &SelectorService{
		text:     text,
		builders: make(map[string]SelectorBuilder),
	}
}

// Name returns the service name "selector" for registration.
func (s *SelectorService) Name() string {
	return "selector"
}

// Initialize sets up the SelectorService for operation.
func (s *SelectorService) Initialize() error {
	if s.text == nil {
		return fmt.Errorf("selector service requires a text service")
	}
	s.initialized = true
	return nil
}

// RegisterBuilder adds or replaces the builder for a custom address type.
func (s *SelectorService) RegisterBuilder(typeName string, builder SelectorBuilder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builders[typeName] = builder
}

// Resolve converts an address such as id=submit into a locator.
func (s *SelectorService) Resolve(address string) (behavetypes.Locator, error) {
	if !s.initialized {
		return behavetypes.Locator{}, fmt.Errorf("selector service not initialized")
	}
	return s.resolve(address, 0)
}

func (s *SelectorService) resolve(address string, depth int) (behavetypes.Locator, error) {
	if depth > maxSelectorRedirects {
		return behavetypes.Locator{}, fmt.Errorf("selector %q redirects too deeply: %w", address, behavetypes.ErrResource)
	}

	typeName, value, ok := strings.Cut(address, "=")
	if !ok {
		return behavetypes.Locator{}, fmt.Errorf("unresolved selector %q: expected type=value: %w", address, behavetypes.ErrResource)
	}
	typeName = strings.TrimSpace(typeName)

	if strings.HasPrefix(value, "$") || IsQuoted(value) {
		resolved, err := s.text.ResolveText(value)
		if err != nil {
			return behavetypes.Locator{}, err
		}
		value = resolved
	}

	switch typeName {
	case "name":
		return behavetypes.CSS(fmt.Sprintf(`[name="%s"]`, cssEscape(value))), nil
	case "text":
		return behavetypes.XPath(fmt.Sprintf("//*[text()=%s]", xpathLiteral(value))), nil
	case "selector":
		return behavetypes.CSS(value), nil
	case "id":
		return behavetypes.ID(value), nil
	case "data-id":
		return behavetypes.CSS(fmt.Sprintf(`[data-testid="%s"]`, cssEscape(value))), nil
	case "xpath":
		return behavetypes.XPath(value), nil
	}

	s.mu.RLock()
	builder, ok := s.builders[typeName]
	s.mu.RUnlock()
	if !ok {
		return behavetypes.Locator{}, fmt.Errorf("unresolved selector %q: unknown type %s: %w", address, typeName, behavetypes.ErrResource)
	}

	loc, redirect, err := builder(value)
	if err != nil {
		return behavetypes.Locator{}, err
	}
	if redirect != "" {
		return s.resolve(redirect, depth+1)
	}
	return loc, nil
}

// cssEscape escapes a value for use inside a double-quoted CSS attribute selector.
func cssEscape(value string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
}

// xpathLiteral quotes a string for XPath 1.0, which has no escape syntax.
func xpathLiteral(value string) string {
	if !strings.Contains(value, `"`) {
		return `"` + value + `"`
	}
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	parts := strings.Split(value, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if part != "" {
			quoted = append(quoted, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
