package pipeline

import (
	"context"
	"regexp"
	"strings"

	"tailor/internal/ai"
	"tailor/internal/config"
	"tailor/internal/errors"
	"tailor/internal/types"
)

var (
	jobTitleLine = regexp.MustCompile(`(?i)Job Title:\s*(.+)`)
	companyLine  = regexp.MustCompile(`(?i)Company:\s*(.+)`)
)

// FactExtractor derives a job title and company from a raw job
// description via one completion call. Extraction is best-effort: any
// failure falls back to configured defaults instead of aborting the run.
type FactExtractor struct {
	provider ai.AIProvider
	policy   config.PipelineConfig
	logger   *errors.Logger
}

// NewFactExtractor creates a fact extractor backed by the given provider
func NewFactExtractor(provider ai.AIProvider, policy config.PipelineConfig, logger *errors.Logger) *FactExtractor {
	return &FactExtractor{provider: provider, policy: policy, logger: logger}
}

// Extract returns the job facts for a description. Never returns an
// error: a failed or malformed completion yields the fallback title and
// no company.
func (e *FactExtractor) Extract(ctx context.Context, jobDescription string) (types.JobFacts, *ai.TokenUsage) {
	raw, usage, err := e.provider.ExtractJobFacts(ctx, types.ExtractJobFactsInput{
		JobDescription: jobDescription,
	})
	if err != nil {
		e.logger.Warn("Job fact extraction failed, using fallback title",
			"fallback_title", e.policy.FallbackTitle,
			"error", err.Error())
		return types.JobFacts{Title: e.policy.FallbackTitle}, usage
	}

	facts := ParseJobFacts(raw, e.policy.FallbackTitle)
	e.logger.Debug("Extracted job facts",
		"title", facts.Title,
		"company", facts.Company)
	return facts, usage
}

// ParseJobFacts parses the labeled extraction response. A missing title
// line yields the fallback title; a company containing "not specified"
// (any case) is treated as absent.
func ParseJobFacts(raw, fallbackTitle string) types.JobFacts {
	facts := types.JobFacts{Title: fallbackTitle}

	if m := jobTitleLine.FindStringSubmatch(raw); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			facts.Title = title
		}
	}

	if m := companyLine.FindStringSubmatch(raw); m != nil {
		company := strings.TrimSpace(m[1])
		if company != "" && !strings.Contains(strings.ToLower(company), "not specified") {
			facts.Company = company
		}
	}

	return facts
}
