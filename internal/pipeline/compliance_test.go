package pipeline

import (
	"testing"

	"tailor/internal/types"
)

const sampleReport = `ANALYSIS SUMMARY

STRENGTHS:
- Strong keyword coverage for backend terms

SUGGESTIONS:
- [REPHRASE] Led migration to Kubernetes (from: resume.pdf)
- [INFERENCE] Familiarity with CI/CD pipelines (inferred from: cover_letter.pdf)

MISSING REQUIREMENTS:
- [GAP] AWS Solutions Architect certification
- [GAP] Team leadership experience (5+ years required)

This concludes the analysis.`

func TestParseReport(t *testing.T) {
	report := ParseReport(sampleReport)

	if report.Raw != sampleReport {
		t.Error("Raw report text not preserved")
	}
	if len(report.Claims) != 4 {
		t.Fatalf("Expected 4 claims, got %d: %+v", len(report.Claims), report.Claims)
	}

	rephrase := report.Claims[0]
	if rephrase.Category != types.ClaimRephrase {
		t.Errorf("Expected REPHRASE first, got %s", rephrase.Category)
	}
	if rephrase.Text != "Led migration to Kubernetes (from: resume.pdf)" {
		t.Errorf("Unexpected rephrase text %q", rephrase.Text)
	}
	if rephrase.Citation != "resume.pdf" {
		t.Errorf("Expected citation resume.pdf, got %q", rephrase.Citation)
	}

	inference := report.Claims[1]
	if inference.Category != types.ClaimInference {
		t.Errorf("Expected INFERENCE second, got %s", inference.Category)
	}
	if inference.Citation != "cover_letter.pdf" {
		t.Errorf("Expected citation cover_letter.pdf, got %q", inference.Citation)
	}

	for _, claim := range report.Claims[2:] {
		if claim.Category != types.ClaimGap {
			t.Errorf("Expected GAP claim, got %s", claim.Category)
		}
		if claim.Citation != "" {
			t.Errorf("GAP claims never carry citations, got %q", claim.Citation)
		}
	}
}

func TestParseReportEdgeCases(t *testing.T) {
	t.Run("NoMarkers", func(t *testing.T) {
		report := ParseReport("The resume looks fine overall.\nNo changes suggested.")
		if len(report.Claims) != 0 {
			t.Errorf("Expected no claims, got %+v", report.Claims)
		}
	})

	t.Run("MarkerWithEmptyText", func(t *testing.T) {
		report := ParseReport("- [GAP]\n- [GAP] Real gap here")
		if len(report.Claims) != 1 {
			t.Fatalf("Expected the empty claim dropped, got %+v", report.Claims)
		}
		if report.Claims[0].Text != "Real gap here" {
			t.Errorf("Unexpected claim text %q", report.Claims[0].Text)
		}
	})

	t.Run("MarkerMidLine", func(t *testing.T) {
		report := ParseReport("Consider this [REPHRASE] suggestion carefully")
		if len(report.Claims) != 1 {
			t.Fatalf("Expected 1 claim, got %d", len(report.Claims))
		}
		if report.Claims[0].Text != "Consider this suggestion carefully" {
			t.Errorf("Marker not excised from text: %q", report.Claims[0].Text)
		}
	})

	t.Run("RephraseWithoutCitation", func(t *testing.T) {
		report := ParseReport("- [REPHRASE] Tighten the summary section")
		if report.Claims[0].Citation != "" {
			t.Errorf("Expected no citation, got %q", report.Claims[0].Citation)
		}
	})
}

func TestGapClaims(t *testing.T) {
	report := ParseReport(sampleReport)
	gaps := report.GapClaims()
	if len(gaps) != 2 {
		t.Fatalf("Expected 2 gap claims, got %d", len(gaps))
	}
	if gaps[0].Text != "AWS Solutions Architect certification" {
		t.Errorf("Gap order not preserved, got %q first", gaps[0].Text)
	}
}
