package pipeline

import (
	"context"

	"tailor/internal/ai"
	"tailor/internal/errors"
	"tailor/internal/types"
)

// DraftGenerator produces the initial tailored resume from the job
// description, the user's profile, and the rendered document context.
// A draft failure is fatal to the generation run.
type DraftGenerator struct {
	provider ai.AIProvider
	logger   *errors.Logger
}

// NewDraftGenerator creates a draft generator backed by the given provider
func NewDraftGenerator(provider ai.AIProvider, logger *errors.Logger) *DraftGenerator {
	return &DraftGenerator{provider: provider, logger: logger}
}

// Draft generates a plain-text resume. The style tag is passed through
// to the system instructions; documents with no extracted text appear in
// the context as an explicit placeholder.
func (d *DraftGenerator) Draft(ctx context.Context, jobDescription, style string, profile *types.Profile, docs []types.SourceDocument) (string, *ai.TokenUsage, error) {
	content, usage, err := d.provider.DraftResume(ctx, types.DraftResumeInput{
		JobDescription:   jobDescription,
		ProfileContext:   RenderProfileContext(profile),
		DocumentsContext: RenderDocumentsContext(docs),
		Style:            style,
	})
	if err != nil {
		return "", usage, err
	}

	d.logger.Debug("Drafted resume",
		"content_length", len(content),
		"document_count", len(docs),
		"style", style)
	return content, usage, nil
}
