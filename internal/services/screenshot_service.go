package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"webbehave/internal/testutils"
	"webbehave/pkg/behavetypes"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ScreenshotService stores PNG captures under a directory.
type ScreenshotService struct {
	initialized bool
	dir         string
	mode        testutils.ModeProvider
}

// NewScreenshotService creates a ScreenshotService writing into dir.
func NewScreenshotService(dir string, mode testutils.ModeProvider) *ScreenshotService {
	return &ScreenshotService{dir: dir, mode: mode}
}

// Name returns the service name "screenshot" for registration.
func (s *ScreenshotService) Name() string {
	return "screenshot"
}

// Initialize sets up the ScreenshotService. The directory is created lazily.
func (s *ScreenshotService) Initialize() error {
	if s.dir == "" {
		s.dir = behavetypes.DefaultRunConfig().ScreenshotDir
	}
	s.initialized = true
	return nil
}

// Save writes png as <dir>/<label>-<timestamp>.png and returns the path.
func (s *ScreenshotService) Save(label string, png []byte) (string, error) {
	if !s.initialized {
		return "", fmt.Errorf("screenshot service not initialized")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	stamp := testutils.GetCurrentTime(s.mode).Format("20060102-150405.000")
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s.png", SanitizeFileName(label), strings.ReplaceAll(stamp, ".", "")))

	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}

// SanitizeFileName reduces label to characters safe in file names.
func SanitizeFileName(label string) string {
	cleaned := strings.Trim(unsafeFileChars.ReplaceAllString(label, "_"), "_")
	if cleaned == "" {
		return "screenshot"
	}
	return cleaned
}
