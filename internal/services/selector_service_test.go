package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/pkg/behavetypes"
)

func newSelectorService(t *testing.T, vars mapScope) *SelectorService {
	t.Helper()
	text := NewTextService(vars)
	require.NoError(t, text.Initialize())
	sel := NewSelectorService(text)
	require.NoError(t, sel.Initialize())
	return sel
}

func TestSelectorService_BuiltinTypes(t *testing.T) {
	sel := newSelectorService(t, mapScope{"field": "email"})

	tests := []struct {
		address string
		want    behavetypes.Locator
	}{
		{"id=submit", behavetypes.ID("submit")},
		{"name=username", behavetypes.CSS(`[name="username"]`)},
		{"name=$field", behavetypes.CSS(`[name="email"]`)},
		{"text=Login", behavetypes.XPath(`//*[text()="Login"]`)},
		{`text="Sign in"`, behavetypes.XPath(`//*[text()="Sign in"]`)},
		{"selector=div.card > a", behavetypes.CSS("div.card > a")},
		{"data-id=save", behavetypes.CSS(`[data-testid="save"]`)},
		{"xpath=//a[@href='/x']", behavetypes.XPath("//a[@href='/x']")},
		{"selector=a[href=x]", behavetypes.CSS("a[href=x]")},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			got, err := sel.Resolve(tt.address)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectorService_Unresolved(t *testing.T) {
	sel := newSelectorService(t, mapScope{})

	_, err := sel.Resolve("nosuchtype=value")
	assert.ErrorIs(t, err, behavetypes.ErrResource)
	assert.Contains(t, err.Error(), "unresolved selector")

	_, err = sel.Resolve("no-equals-sign")
	assert.ErrorIs(t, err, behavetypes.ErrResource)
}

func TestSelectorService_CustomBuilders(t *testing.T) {
	sel := newSelectorService(t, mapScope{})

	sel.RegisterBuilder("button", func(value string) (behavetypes.Locator, string, error) {
		return behavetypes.XPath(fmt.Sprintf("//button[text()=%q]", value)), "", nil
	})
	sel.RegisterBuilder("field", func(value string) (behavetypes.Locator, string, error) {
		return behavetypes.Locator{}, "name=" + value, nil
	})
	sel.RegisterBuilder("loop", func(value string) (behavetypes.Locator, string, error) {
		return behavetypes.Locator{}, "loop=" + value, nil
	})

	got, err := sel.Resolve("button=Save")
	require.NoError(t, err)
	assert.Equal(t, behavetypes.XPath(`//button[text()="Save"]`), got)

	got, err = sel.Resolve("field=password")
	require.NoError(t, err)
	assert.Equal(t, behavetypes.CSS(`[name="password"]`), got)

	_, err = sel.Resolve("loop=x")
	assert.ErrorIs(t, err, behavetypes.ErrResource)
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `"plain"`, xpathLiteral("plain"))
	assert.Equal(t, `'say "hi"'`, xpathLiteral(`say "hi"`))
	assert.Equal(t, `concat("it's ", '"', "quoted", '"')`, xpathLiteral(`it's "quoted"`))
}

func TestCSSEscape(t *testing.T) {
	assert.Equal(t, `a\"b\\c`, cssEscape(`a"b\c`))
}
