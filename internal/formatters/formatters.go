package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"tailor/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "GenerateResult", &GenerateTextFormatter{})
	registry.RegisterFormatter("markdown", "GenerateResult", &GenerateMarkdownFormatter{})
	registry.RegisterFormatter("text", "ComplianceReport", &ComplianceTextFormatter{})
	registry.RegisterFormatter("markdown", "ComplianceReport", &ComplianceMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.GenerateResult:
		return "GenerateResult"
	case types.ComplianceReport:
		return "ComplianceReport"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// GenerateTextFormatter handles text formatting for generation results
type GenerateTextFormatter struct{}

func (gtf *GenerateTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.GenerateResult)
	if !ok {
		return "", fmt.Errorf("expected GenerateResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== GENERATED RESUME ===\n\n")
	output.WriteString(result.Content)
	output.WriteString("\n\n")

	output.WriteString("=== GENERATION DETAILS ===\n")
	output.WriteString(fmt.Sprintf("Title: %s\n", result.Title))
	output.WriteString(fmt.Sprintf("Style: %s\n", result.Style))
	output.WriteString(fmt.Sprintf("ATS Score: %d/100\n", result.ATSScore))
	if result.Refined {
		output.WriteString("Refinement: compliance analysis and reformat applied\n")
	} else {
		output.WriteString("Refinement: not applied\n")
	}
	if result.ResumeID != "" {
		output.WriteString(fmt.Sprintf("Resume ID: %s\n", result.ResumeID))
	}

	return output.String(), nil
}

func (gtf *GenerateTextFormatter) SupportedType() string {
	return "GenerateResult"
}

// GenerateMarkdownFormatter handles markdown formatting for generation results
type GenerateMarkdownFormatter struct{}

func (gmf *GenerateMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.GenerateResult)
	if !ok {
		return "", fmt.Errorf("expected GenerateResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Generated Resume\n\n")
	output.WriteString(result.Content)
	output.WriteString("\n\n")

	output.WriteString("## Generation Details\n\n")
	output.WriteString(fmt.Sprintf("**Title:** %s\n\n", result.Title))
	output.WriteString(fmt.Sprintf("**Style:** %s\n\n", result.Style))
	output.WriteString(fmt.Sprintf("**ATS Score:** %d/100\n\n", result.ATSScore))
	if result.Refined {
		output.WriteString("**Refinement:** compliance analysis and reformat applied\n")
	} else {
		output.WriteString("**Refinement:** not applied\n")
	}

	return output.String(), nil
}

func (gmf *GenerateMarkdownFormatter) SupportedType() string {
	return "GenerateResult"
}

// ComplianceTextFormatter handles text formatting for compliance reports
type ComplianceTextFormatter struct{}

func (ctf *ComplianceTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.ComplianceReport)
	if !ok {
		return "", fmt.Errorf("expected ComplianceReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== COMPLIANCE ANALYSIS ===\n\n")

	if len(report.Claims) == 0 {
		output.WriteString("No categorized claims found in the report.\n\n")
		output.WriteString(report.Raw)
		output.WriteString("\n")
		return output.String(), nil
	}

	for _, category := range []types.ClaimCategory{types.ClaimRephrase, types.ClaimInference, types.ClaimGap} {
		claims := claimsInCategory(report, category)
		if len(claims) == 0 {
			continue
		}
		output.WriteString(fmt.Sprintf("%s (%d):\n", category, len(claims)))
		for _, claim := range claims {
			output.WriteString(fmt.Sprintf("  - %s\n", claim.Text))
			if claim.Citation != "" {
				output.WriteString(fmt.Sprintf("    Supported by: %s\n", claim.Citation))
			}
		}
		output.WriteString("\n")
	}

	if gaps := report.GapClaims(); len(gaps) > 0 {
		output.WriteString(fmt.Sprintf("WARNING: %d claim(s) have no support in the source documents.\n", len(gaps)))
		output.WriteString("Reformatting will remove this content from the resume.\n")
	} else {
		output.WriteString("All claims are supported by the source documents.\n")
	}

	return output.String(), nil
}

func (ctf *ComplianceTextFormatter) SupportedType() string {
	return "ComplianceReport"
}

// ComplianceMarkdownFormatter handles markdown formatting for compliance reports
type ComplianceMarkdownFormatter struct{}

func (cmf *ComplianceMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.ComplianceReport)
	if !ok {
		return "", fmt.Errorf("expected ComplianceReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Compliance Analysis\n\n")

	if len(report.Claims) == 0 {
		output.WriteString("No categorized claims found in the report.\n\n")
		output.WriteString(report.Raw)
		output.WriteString("\n")
		return output.String(), nil
	}

	headings := map[types.ClaimCategory]string{
		types.ClaimRephrase:  "Rephrased Claims",
		types.ClaimInference: "Inferred Claims",
		types.ClaimGap:       "Unsupported Claims",
	}

	for _, category := range []types.ClaimCategory{types.ClaimRephrase, types.ClaimInference, types.ClaimGap} {
		claims := claimsInCategory(report, category)
		if len(claims) == 0 {
			continue
		}
		output.WriteString(fmt.Sprintf("## %s (%d)\n\n", headings[category], len(claims)))
		for _, claim := range claims {
			output.WriteString(fmt.Sprintf("- %s\n", claim.Text))
			if claim.Citation != "" {
				output.WriteString(fmt.Sprintf("  - **Supported by:** %s\n", claim.Citation))
			}
		}
		output.WriteString("\n")
	}

	if gaps := report.GapClaims(); len(gaps) > 0 {
		output.WriteString(fmt.Sprintf("## Verdict\n\n%d claim(s) have no support in the source documents. Reformatting will remove this content from the resume.\n", len(gaps)))
	} else {
		output.WriteString("## Verdict\n\nAll claims are supported by the source documents.\n")
	}

	return output.String(), nil
}

func (cmf *ComplianceMarkdownFormatter) SupportedType() string {
	return "ComplianceReport"
}

func claimsInCategory(report types.ComplianceReport, category types.ClaimCategory) []types.ComplianceClaim {
	var claims []types.ComplianceClaim
	for _, claim := range report.Claims {
		if claim.Category == category {
			claims = append(claims, claim)
		}
	}
	return claims
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
