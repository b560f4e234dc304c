package formatters

import (
	"strings"
	"testing"

	"tailor/internal/types"
)

func sampleGenerateResult() types.GenerateResult {
	return types.GenerateResult{
		ResumeID: "res-1",
		Title:    "Platform Engineer",
		Content:  "PROFESSIONAL SUMMARY\nPlatform engineer with Go experience.",
		ATSScore: 82,
		Style:    "professional",
		Refined:  true,
	}
}

func sampleComplianceReport() types.ComplianceReport {
	return types.ComplianceReport{
		Raw: "raw report text",
		Claims: []types.ComplianceClaim{
			{Category: types.ClaimRephrase, Text: "Led a Go services team", Citation: "resume.pdf: led backend team"},
			{Category: types.ClaimInference, Text: "Comfortable with distributed systems"},
			{Category: types.ClaimGap, Text: "Certified Kubernetes administrator"},
		},
	}
}

func TestRegistryFormatSelection(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		format   string
		contains string
		wantErr  bool
	}{
		{
			name:     "generate result as text",
			data:     sampleGenerateResult(),
			format:   "text",
			contains: "=== GENERATED RESUME ===",
		},
		{
			name:     "generate result as markdown",
			data:     sampleGenerateResult(),
			format:   "markdown",
			contains: "# Generated Resume",
		},
		{
			name:     "generate result as json",
			data:     sampleGenerateResult(),
			format:   "json",
			contains: `"atsScore": 82`,
		},
		{
			name:     "compliance report as text",
			data:     sampleComplianceReport(),
			format:   "text",
			contains: "=== COMPLIANCE ANALYSIS ===",
		},
		{
			name:     "compliance report as markdown",
			data:     sampleComplianceReport(),
			format:   "markdown",
			contains: "## Unsupported Claims (1)",
		},
		{
			name:     "unknown struct falls back to json any",
			data:     struct{ Name string }{Name: "x"},
			format:   "json",
			contains: `"Name": "x"`,
		},
		{
			name:    "unknown format",
			data:    sampleGenerateResult(),
			format:  "xml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := GlobalRegistry.Format(tt.data, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got output: %q", output)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(output, tt.contains) {
				t.Errorf("output missing %q:\n%s", tt.contains, output)
			}
		})
	}
}

func TestComplianceTextFormatterFlagsGaps(t *testing.T) {
	formatter := &ComplianceTextFormatter{}

	output, err := formatter.Format(sampleComplianceReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "WARNING: 1 claim(s) have no support") {
		t.Errorf("expected gap warning in output:\n%s", output)
	}
	if !strings.Contains(output, "Supported by: resume.pdf: led backend team") {
		t.Errorf("expected citation in output:\n%s", output)
	}
}

func TestComplianceTextFormatterCleanReport(t *testing.T) {
	formatter := &ComplianceTextFormatter{}
	report := types.ComplianceReport{
		Raw: "raw",
		Claims: []types.ComplianceClaim{
			{Category: types.ClaimRephrase, Text: "Shipped Go services", Citation: "notes.md"},
		},
	}

	output, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "All claims are supported") {
		t.Errorf("expected clean verdict in output:\n%s", output)
	}
}

func TestComplianceFormatterEmptyClaims(t *testing.T) {
	formatter := &ComplianceMarkdownFormatter{}
	report := types.ComplianceReport{Raw: "unparsed analysis text"}

	output, err := formatter.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "unparsed analysis text") {
		t.Errorf("expected raw report passthrough:\n%s", output)
	}
}

func TestFormatterRejectsWrongType(t *testing.T) {
	formatter := &GenerateTextFormatter{}
	if _, err := formatter.Format("not a result"); err == nil {
		t.Error("expected type mismatch error")
	}
}
