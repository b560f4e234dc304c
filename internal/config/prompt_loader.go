package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles resolves file-based prompt overrides for every
// pipeline operation. Inline prompt values take precedence; a file is
// only read when the corresponding inline value is empty.
func (c *Config) loadPromptsFromFiles() error {
	ops := []struct {
		name    string
		prompts *PromptConfig
	}{
		{"extract", &c.AI.Extract.Prompts},
		{"draft", &c.AI.Draft.Prompts},
		{"analyze", &c.AI.Analyze.Prompts},
		{"reformat", &c.AI.Reformat.Prompts},
	}

	for _, op := range ops {
		if op.prompts.System == "" && op.prompts.SystemFile != "" {
			content, err := loadPromptFromFile(op.prompts.SystemFile, "system", op.name)
			if err != nil {
				return err
			}
			op.prompts.System = content
		}
		if op.prompts.User == "" && op.prompts.UserFile != "" {
			content, err := loadPromptFromFile(op.prompts.UserFile, "user", op.name)
			if err != nil {
				return err
			}
			op.prompts.User = content
		}
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	return trimmed, nil
}
