package services

import (
	"sync"

	"webbehave/internal/logger"
)

// ClipboardService backs the clipboard variable. When the system clipboard
// is unavailable it falls back to process memory so scripts still run.
type ClipboardService struct {
	mu       sync.Mutex
	system   bool
	fallback string
}

// NewClipboardService creates a new ClipboardService instance.
func NewClipboardService() *ClipboardService {
	return &ClipboardService{}
}

// Name returns the service name "clipboard" for registration.
func (c *ClipboardService) Name() string {
	return "clipboard"
}

// Initialize connects to the system clipboard where the platform allows it.
func (c *ClipboardService) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !clipboardAvailable {
		logger.Debug("System clipboard unavailable, using in-memory clipboard")
		return nil
	}
	if err := initClipboard(); err != nil {
		logger.Warn("System clipboard initialization failed, using in-memory clipboard", "error", err)
		return nil
	}
	c.system = true
	return nil
}

// IsSystem reports whether the OS clipboard is in use.
func (c *ClipboardService) IsSystem() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.system
}

// Read returns the clipboard text.
func (c *ClipboardService) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.system {
		return readFromClipboard(), nil
	}
	return c.fallback, nil
}

// Write replaces the clipboard text.
func (c *ClipboardService) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.system {
		return writeToClipboard(text)
	}
	c.fallback = text
	return nil
}
