package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webbehave/internal/testutils"
)

func TestScreenshotService_Save(t *testing.T) {
	testutils.ResetTestCounters()
	dir := filepath.Join(t.TempDir(), "shots")
	svc := NewScreenshotService(dir, testutils.StaticMode(true))
	require.NoError(t, svc.Initialize())

	path, err := svc.Save("Test Login", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Test_Login-20250101-000001000.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestScreenshotService_DefaultDir(t *testing.T) {
	svc := NewScreenshotService("", testutils.StaticMode(true))
	require.NoError(t, svc.Initialize())
	assert.Equal(t, "screenshots", svc.dir)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "Action_fill_form", SanitizeFileName("Action fill/form"))
	assert.Equal(t, "screenshot", SanitizeFileName("///"))
	assert.Equal(t, "ok-name.v2", SanitizeFileName("ok-name.v2"))
}
