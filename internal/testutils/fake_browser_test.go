package testutils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/pkg/behavetypes"
)

func TestFakeBrowser_ElementOperations(t *testing.T) {
	ctx := context.Background()
	b := NewFakeBrowser("chrome")
	loc := behavetypes.ID("username")
	b.SetElement(loc, &FakeElement{Text: "Name"})

	require.NoError(t, b.SendKeys(ctx, loc, "user\r"))
	value, err := b.Value(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "user", value)

	text, err := b.Text(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "Name", text)

	_, err = b.Text(ctx, behavetypes.ID("missing"))
	assert.True(t, errors.Is(err, behavetypes.ErrTimeout))

	n, err := b.Count(ctx, behavetypes.ID("missing"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFakeBrowser_NavigateSetsTitle(t *testing.T) {
	ctx := context.Background()
	b := NewFakeBrowser("chrome")
	b.TitleFor["http://example.com"] = "Example"

	require.NoError(t, b.Navigate(ctx, "http://example.com"))
	title, err := b.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Example", title)
	assert.Equal(t, []string{"navigate http://example.com", "title"}, b.Calls())
}

func TestFakeBrowser_ClosedAndFailures(t *testing.T) {
	ctx := context.Background()
	b := NewFakeBrowser("chrome")
	b.Fail["reload"] = errors.New("boom")

	assert.EqualError(t, b.Reload(ctx), "boom")

	require.NoError(t, b.Close())
	err := b.Navigate(ctx, "http://x")
	assert.True(t, errors.Is(err, behavetypes.ErrResource))
}

func TestFakeLauncher(t *testing.T) {
	l := NewFakeLauncher(func(b *FakeBrowser) { b.Windows = 2 })

	br, err := l.Launch(context.Background(), "chrome", behavetypes.DefaultRunConfig())
	require.NoError(t, err)
	assert.Same(t, br, l.Last())
	require.NoError(t, br.SwitchToWindow(context.Background(), 1))
	assert.Error(t, br.SwitchToWindow(context.Background(), 2))
}

func TestDeterministicGenerators(t *testing.T) {
	ResetTestCounters()
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", GenerateUUID(StaticMode(true)))
	assert.Equal(t, "00000002-0000-4000-8000-000000000002", GenerateUUID(StaticMode(true)))
	assert.Len(t, GenerateUUID(StaticMode(false)), 36)
	assert.Equal(t, "1-1-2025", TodayDate(StaticMode(true)))

	first := GetCurrentTime(StaticMode(true))
	second := GetCurrentTime(StaticMode(true))
	assert.True(t, second.After(first))
}
