package prompt

import (
	_ "embed"
	"fmt"
	"os"

	"interview-dashboard/internal/logger"
)

//go:embed default_template.txt
var defaultTemplate string

// DefaultTemplate returns the built-in interview prompt template
func DefaultTemplate() string {
	return defaultTemplate
}

// LoadTemplate reads the template at path, falling back to the built-in one when the file is missing
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return string(data), nil
	}
	if os.IsNotExist(err) {
		logger.Warn("Prompt template not found, using default prompt", "path", path)
		return defaultTemplate, nil
	}
	return "", fmt.Errorf("failed to read prompt template %s: %w", path, err)
}
