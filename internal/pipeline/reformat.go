package pipeline

import (
	"context"
	"regexp"
	"strings"

	"tailor/internal/ai"
	"tailor/internal/errors"
	"tailor/internal/types"
)

// ComplianceReformatter rewrites a draft applying the analysis report:
// REPHRASE suggestions are applied, INFERENCE conservatively, GAP never.
// The model output is then checked programmatically; a fabrication
// finding is an error and the caller keeps the pre-refinement draft.
type ComplianceReformatter struct {
	provider ai.AIProvider
	logger   *errors.Logger
}

// NewComplianceReformatter creates a reformatter backed by the given provider
func NewComplianceReformatter(provider ai.AIProvider, logger *errors.Logger) *ComplianceReformatter {
	return &ComplianceReformatter{provider: provider, logger: logger}
}

// Reformat runs the reformatting completion and verifies the output
// against the report's GAP claims and the verification corpus (document
// texts plus the job description).
func (r *ComplianceReformatter) Reformat(ctx context.Context, input types.ReformatResumeInput, report types.ComplianceReport, corpus string) (string, *ai.TokenUsage, error) {
	content, usage, err := r.provider.ReformatResume(ctx, input)
	if err != nil {
		return "", usage, err
	}

	if err := VerifyReformat(content, report, corpus); err != nil {
		r.logger.Warn("Reformatted resume rejected by fabrication guard",
			"error", err.Error())
		return "", usage, err
	}

	r.logger.Debug("Reformatted resume passed fabrication guard",
		"content_length", len(content))
	return content, usage, nil
}

var (
	credentialKeyword = regexp.MustCompile(`(?i)\b(certified|certification|licensed?|licence|diploma|degree|bachelor|master|doctorate|phd)\b`)
	properNoun        = regexp.MustCompile(`\b[A-Z][A-Za-z0-9+#.-]{3,}\b`)
)

// VerifyReformat is the programmatic guard behind the reformatter. It
// rejects output where a GAP claim subject survives, and output whose
// credential lines name proper nouns absent from the corpus.
func VerifyReformat(content string, report types.ComplianceReport, corpus string) error {
	contentLower := strings.ToLower(content)
	for _, gap := range report.GapClaims() {
		subject := claimSubject(gap.Text)
		if len(subject) <= 3 {
			continue
		}
		if strings.Contains(contentLower, strings.ToLower(subject)) {
			return errors.NewValidationError(errors.ErrCodeFabricationDetected,
				"Reformatted resume contains content flagged as a gap", nil).
				WithContext("claim", gap.Text).
				WithContext("subject", subject)
		}
	}

	corpusLower := strings.ToLower(corpus)
	for _, line := range strings.Split(content, "\n") {
		if !credentialKeyword.MatchString(line) {
			continue
		}
		if isSectionHeader(line) {
			continue
		}
		for _, noun := range properNoun.FindAllString(line, -1) {
			if credentialKeyword.MatchString(noun) {
				continue
			}
			if !strings.Contains(corpusLower, strings.ToLower(noun)) {
				return errors.NewValidationError(errors.ErrCodeFabricationDetected,
					"Reformatted resume names an unverified credential", nil).
					WithContext("line", strings.TrimSpace(line)).
					WithContext("term", noun)
			}
		}
	}

	return nil
}

// claimSubject reduces a claim text to its leading subject term, cutting
// parenthetical notes and trailing commentary.
func claimSubject(text string) string {
	subject := text
	for _, sep := range []string{" (", " - ", " – ", ":"} {
		if idx := strings.Index(subject, sep); idx >= 0 {
			subject = subject[:idx]
		}
	}
	return strings.Trim(strings.TrimSpace(subject), `"'`)
}

// isSectionHeader reports whether a resume line is an all-caps section
// header such as CERTIFICATIONS.
func isSectionHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	hasLetter := false
	for _, r := range trimmed {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
