package services

import (
	"fmt"
	"os"
	"strings"

	"webbehave/pkg/behavetypes"
)

// VariableFileService parses name=value files for the load command.
type VariableFileService struct {
	initialized bool
}

// NewVariableFileService creates a new VariableFileService instance.
func NewVariableFileService() *VariableFileService {
	return &VariableFileService{}
}

// Name returns the service name "variable_file" for registration.
func (v *VariableFileService) Name() string {
	return "variable_file"
}

// Initialize sets up the VariableFileService for operation.
func (v *VariableFileService) Initialize() error {
	v.initialized = true
	return nil
}

// Load reads path and returns its name=value pairs.
func (v *VariableFileService) Load(path string) (map[string]string, error) {
	if !v.initialized {
		return nil, fmt.Errorf("variable file service not initialized")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variable file: %w: %w", behavetypes.ErrResource, err)
	}
	return parseVariableLines(string(content)), nil
}

// parseVariableLines splits each line on its first '='. Values are kept
// verbatim: no quote removal, no escapes, no $NAME expansion. Lines without
// '=' and lines starting with '#' are skipped.
func parseVariableLines(content string) map[string]string {
	vars := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		vars[name] = value
	}
	return vars
}
