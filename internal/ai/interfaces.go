package ai

import (
	"context"

	"tailor/internal/types"
)

// AIProvider interface for different AI implementations
// All methods return the raw completion text plus token usage - callers
// can ignore the usage if not needed
type AIProvider interface {
	ExtractJobFacts(ctx context.Context, input types.ExtractJobFactsInput) (string, *TokenUsage, error)
	DraftResume(ctx context.Context, input types.DraftResumeInput) (string, *TokenUsage, error)
	AnalyzeCompliance(ctx context.Context, input types.AnalyzeComplianceInput) (string, *TokenUsage, error)
	ReformatResume(ctx context.Context, input types.ReformatResumeInput) (string, *TokenUsage, error)
	ScoreResume(ctx context.Context, input types.ScoreResumeInput) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}
