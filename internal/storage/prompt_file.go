package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// PromptFile is the handoff file carrying an assembled prompt to the injector process
type PromptFile struct {
	path string
}

// NewPromptFile creates a handoff at path
func NewPromptFile(path string) *PromptFile {
	return &PromptFile{path: path}
}

// Path returns the file location
func (pf *PromptFile) Path() string {
	return pf.path
}

// Write replaces the file contents atomically so a reader never sees a partial prompt
func (pf *PromptFile) Write(prompt string) error {
	dir := filepath.Dir(pf.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create prompt dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prompt-*")
	if err != nil {
		return fmt.Errorf("failed to create temp prompt file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(prompt); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), pf.path); err != nil {
		return fmt.Errorf("failed to save prompt to %s: %w", pf.path, err)
	}
	return nil
}

// Read returns the saved prompt
func (pf *PromptFile) Read() (string, error) {
	content, err := os.ReadFile(pf.path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return string(content), nil
}
