package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"tailor/internal/ai"
	"tailor/internal/errors"
	"tailor/internal/types"
)

// echoDraftProvider derives its completion from the rendered input, so
// two calls only produce the same output when the generator built the
// same input both times.
type echoDraftProvider struct {
	mockProvider
}

func (p *echoDraftProvider) DraftResume(ctx context.Context, input types.DraftResumeInput) (string, *ai.TokenUsage, error) {
	p.draftCalls++
	p.lastDraft = input
	return fmt.Sprintf("RESUME\nstyle: %s\njob: %s\nprofile:\n%s\ndocuments:\n%s",
		input.Style, input.JobDescription, input.ProfileContext, input.DocumentsContext), nil, nil
}

func TestDraftIdempotence(t *testing.T) {
	provider := &echoDraftProvider{}
	drafter := NewDraftGenerator(provider, errors.NewLogger(slog.LevelError))

	experience := "Led a Go platform team for three years"
	profile := &types.Profile{
		FullName: "Jordan Vale",
		Headline: "Backend engineer",
		Location: "Berlin",
	}
	docs := []types.SourceDocument{
		{Name: "resume.pdf", Type: types.DocumentTypeResume, ExtractedText: &experience},
		{Name: "photo.png", Type: types.DocumentTypeOther}, // no extracted text
	}

	first, _, err := drafter.Draft(context.Background(), testJobDescription, "professional", profile, docs)
	if err != nil {
		t.Fatalf("Unexpected error on first draft: %v", err)
	}
	second, _, err := drafter.Draft(context.Background(), testJobDescription, "professional", profile, docs)
	if err != nil {
		t.Fatalf("Unexpected error on second draft: %v", err)
	}

	if first == "" {
		t.Fatal("Expected non-empty draft content")
	}
	if first != second {
		t.Errorf("Identical inputs produced different drafts:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	if provider.draftCalls != 2 {
		t.Errorf("Expected 2 draft calls, got %d", provider.draftCalls)
	}
}
