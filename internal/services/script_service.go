package services

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"webbehave/pkg/behavetypes"
)

// ScriptService loads script files into filtered line lists.
type ScriptService struct {
	initialized bool
}

// NewScriptService creates a new ScriptService instance.
func NewScriptService() *ScriptService {
	return &ScriptService{}
}

// Name returns the service name "script" for registration.
func (s *ScriptService) Name() string {
	return "script"
}

// Initialize sets up the ScriptService for operation.
func (s *ScriptService) Initialize() error {
	s.initialized = true
	return nil
}

// LoadScript reads a script file and returns its statement lines.
func (s *ScriptService) LoadScript(path string) ([]string, error) {
	if !s.initialized {
		return nil, fmt.Errorf("script service not initialized")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script file: %w: %w", behavetypes.ErrResource, err)
	}
	defer func() { _ = file.Close() }()

	return ReadScript(file)
}

// ReadScript returns the trimmed lines of r, skipping empty lines and
// # comments. Both LF and CRLF line endings are accepted.
func ReadScript(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading script file: %w", err)
	}
	return lines, nil
}
