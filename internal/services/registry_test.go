package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	name  string
	err   error
	order *[]string
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Initialize() error {
	*s.order = append(*s.order, s.name)
	return s.err
}

func TestRegistry_InitializeInOrder(t *testing.T) {
	var order []string
	reg := NewRegistry()
	for _, name := range []string{"text", "selector", "script"} {
		require.NoError(t, reg.RegisterService(&stubService{name: name, order: &order}))
	}

	require.NoError(t, reg.InitializeAll())
	assert.Equal(t, []string{"text", "selector", "script"}, order)
	assert.Equal(t, order, reg.Names())

	svc, err := reg.GetService("selector")
	require.NoError(t, err)
	assert.Equal(t, "selector", svc.Name())
}

func TestRegistry_Errors(t *testing.T) {
	var order []string
	reg := NewRegistry()
	require.NoError(t, reg.RegisterService(&stubService{name: "a", order: &order}))
	assert.Error(t, reg.RegisterService(&stubService{name: "a", order: &order}))

	_, err := reg.GetService("missing")
	assert.Error(t, err)

	boom := errors.New("boom")
	require.NoError(t, reg.RegisterService(&stubService{name: "b", err: boom, order: &order}))
	err = reg.InitializeAll()
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to initialize service b")
}

func TestClipboardService_Fallback(t *testing.T) {
	clip := NewClipboardService()
	require.NoError(t, clip.Initialize())
	if clip.IsSystem() {
		t.Skip("system clipboard in use")
	}

	require.NoError(t, clip.Write("copied"))
	got, err := clip.Read()
	require.NoError(t, err)
	assert.Equal(t, "copied", got)
}
