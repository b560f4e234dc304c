package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPromptsFromFiles(t *testing.T) {
	tempDir := t.TempDir()

	systemPromptContent := "Test system prompt for drafting"
	userPromptContent := "Test user prompt template: %s and %s"

	systemPromptFile := filepath.Join(tempDir, "system.draft.md")
	userPromptFile := filepath.Join(tempDir, "user.draft.md")

	if err := os.WriteFile(systemPromptFile, []byte(systemPromptContent), 0600); err != nil {
		t.Fatalf("Failed to create test system prompt file: %v", err)
	}

	if err := os.WriteFile(userPromptFile, []byte(userPromptContent), 0600); err != nil {
		t.Fatalf("Failed to create test user prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Draft: OperationAIConfig{
				Prompts: PromptConfig{
					SystemFile: systemPromptFile,
					UserFile:   userPromptFile,
				},
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	if config.AI.Draft.Prompts.System != systemPromptContent {
		t.Errorf("Expected loaded system prompt content %q, got %q",
			systemPromptContent, config.AI.Draft.Prompts.System)
	}

	if config.AI.Draft.Prompts.User != userPromptContent {
		t.Errorf("Expected loaded user prompt content %q, got %q",
			userPromptContent, config.AI.Draft.Prompts.User)
	}

	// File paths are preserved after loading
	if config.AI.Draft.Prompts.SystemFile != systemPromptFile {
		t.Error("Expected system prompt file path to be preserved")
	}
}

func TestLoadPromptsFromFilesInlineWins(t *testing.T) {
	tempDir := t.TempDir()

	promptFile := filepath.Join(tempDir, "system.analyze.md")
	if err := os.WriteFile(promptFile, []byte("file content"), 0600); err != nil {
		t.Fatalf("Failed to create test prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Analyze: OperationAIConfig{
				Prompts: PromptConfig{
					System:     "inline content",
					SystemFile: promptFile,
				},
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	if config.AI.Analyze.Prompts.System != "inline content" {
		t.Errorf("Expected inline prompt to win over file, got %q", config.AI.Analyze.Prompts.System)
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "Test prompt content"
	testFile := filepath.Join(tempDir, "test.md")
	if err := os.WriteFile(testFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loadedContent, err := loadPromptFromFile(testFile, "system", "draft")
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}

	if loadedContent != content {
		t.Errorf("Expected content %q, got %q", content, loadedContent)
	}

	// Empty file is an error
	emptyFile := filepath.Join(tempDir, "empty.md")
	if err := os.WriteFile(emptyFile, []byte(""), 0600); err != nil {
		t.Fatalf("Failed to create empty test file: %v", err)
	}

	if _, err := loadPromptFromFile(emptyFile, "system", "draft"); err == nil {
		t.Error("Expected error for empty file")
	}

	// Missing file is an error
	if _, err := loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), "system", "draft"); err == nil {
		t.Error("Expected error for non-existent file")
	}
}
