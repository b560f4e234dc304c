package pipeline

import (
	"context"
	"regexp"
	"strings"

	"tailor/internal/ai"
	"tailor/internal/errors"
	"tailor/internal/types"
)

// ComplianceAnalyzer produces the categorized truthfulness report for a
// drafted resume: suggestions tagged [REPHRASE] and [INFERENCE] with
// document citations, and [GAP] for job requirements the source
// documents do not support.
type ComplianceAnalyzer struct {
	provider ai.AIProvider
	logger   *errors.Logger
}

// NewComplianceAnalyzer creates an analyzer backed by the given provider
func NewComplianceAnalyzer(provider ai.AIProvider, logger *errors.Logger) *ComplianceAnalyzer {
	return &ComplianceAnalyzer{provider: provider, logger: logger}
}

// Analyze runs the compliance analysis and parses the returned report.
func (a *ComplianceAnalyzer) Analyze(ctx context.Context, input types.AnalyzeComplianceInput) (types.ComplianceReport, *ai.TokenUsage, error) {
	raw, usage, err := a.provider.AnalyzeCompliance(ctx, input)
	if err != nil {
		return types.ComplianceReport{}, usage, err
	}

	report := ParseReport(raw)
	a.logger.Debug("Parsed compliance report",
		"claims", len(report.Claims),
		"gaps", len(report.GapClaims()))
	return report, usage, nil
}

var (
	claimMarker  = regexp.MustCompile(`\[(REPHRASE|INFERENCE|GAP)\]`)
	citationNote = regexp.MustCompile(`(?i)\((?:from|inferred from):?\s*([^)]+)\)`)
	bulletPrefix = "-•*– \t"
)

// ParseReport extracts tagged claims from a raw analysis report. A claim
// is any line carrying a category marker; the claim text is the line with
// the marker and bullet decoration removed. Citations are taken from a
// trailing "(from: ...)" style note; REPHRASE and INFERENCE claims
// without one carry no citation and are not trusted downstream.
func ParseReport(raw string) types.ComplianceReport {
	report := types.ComplianceReport{Raw: raw}

	for _, line := range strings.Split(raw, "\n") {
		m := claimMarker.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}

		category := types.ClaimCategory(line[m[2]:m[3]])
		text := line[:m[0]] + line[m[1]:]
		text = strings.Trim(strings.TrimSpace(text), bulletPrefix+":")
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}

		claim := types.ComplianceClaim{Category: category, Text: text}
		if category != types.ClaimGap {
			if cite := citationNote.FindStringSubmatch(text); cite != nil {
				claim.Citation = strings.TrimSpace(cite[1])
			}
		}

		report.Claims = append(report.Claims, claim)
	}

	return report
}
