package types

import "time"

// DocumentType categorizes an uploaded source document.
type DocumentType string

const (
	DocumentTypeResume     DocumentType = "resume"
	DocumentTypeExperience DocumentType = "experience"
	DocumentTypeSkills     DocumentType = "skills"
	DocumentTypeOther      DocumentType = "other"
)

// SourceDocument is an uploaded career document. ExtractedText is nil
// until the processing step has run (or failed permanently).
type SourceDocument struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	Name          string       `json:"name"`
	Type          DocumentType `json:"type"`
	ExtractedText *string      `json:"extractedText,omitempty"`
	StorageKey    string       `json:"storageKey"`
	SizeBytes     int64        `json:"sizeBytes"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// JobPosting is the stored snapshot of a job description used for one
// generation run. Immutable after insert.
type JobPosting struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Description string    `json:"description"`
	Title       string    `json:"title"`
	Company     string    `json:"company,omitempty"`
	Keywords    []string  `json:"keywords"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GeneratedResume is a persisted generation result.
type GeneratedResume struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	JobPostingID *string        `json:"jobPostingId,omitempty"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	ATSScore     int            `json:"atsScore"`
	Style        string         `json:"style"`
	Metadata     ResumeMetadata `json:"metadata"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ResumeMetadata records how a resume was produced.
type ResumeMetadata struct {
	KeywordsMatched int  `json:"keywordsMatched"`
	KeywordsTotal   int  `json:"keywordsTotal"`
	Refined         bool `json:"refined,omitempty"`
	DocumentCount   int  `json:"documentCount,omitempty"`
}

// JobFacts holds the structured fields derived from a job description.
// Company is empty when the posting does not name one.
type JobFacts struct {
	Title   string `json:"title"`
	Company string `json:"company,omitempty"`
}

// KeywordMatch is the result of deterministic keyword scoring.
type KeywordMatch struct {
	Score    int      `json:"score"`
	Matched  []string `json:"matched"`
	Universe []string `json:"universe"`
}

// ClaimCategory tags a compliance-report claim.
type ClaimCategory string

const (
	ClaimRephrase  ClaimCategory = "REPHRASE"
	ClaimInference ClaimCategory = "INFERENCE"
	ClaimGap       ClaimCategory = "GAP"
)

// ComplianceClaim is one categorized claim from an analysis report.
// Citation is empty for GAP claims.
type ComplianceClaim struct {
	Category ClaimCategory `json:"category"`
	Text     string        `json:"text"`
	Citation string        `json:"citation,omitempty"`
}

// ComplianceReport is the parsed form of an analysis report. Raw keeps
// the full report text for display and for the reformatting prompt.
type ComplianceReport struct {
	Raw    string            `json:"raw"`
	Claims []ComplianceClaim `json:"claims"`
}

// GapClaims returns the claims tagged GAP, in report order.
func (r ComplianceReport) GapClaims() []ComplianceClaim {
	var gaps []ComplianceClaim
	for _, claim := range r.Claims {
		if claim.Category == ClaimGap {
			gaps = append(gaps, claim)
		}
	}
	return gaps
}

// Profile carries optional structured profile fields rendered into the
// generation context alongside the uploaded documents.
type Profile struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Headline string `json:"headline,omitempty"`
}

// GenerateRequest is the input to a full generation run.
type GenerateRequest struct {
	JobDescription string   `json:"jobDescription"`
	Style          string   `json:"style,omitempty"`
	Profile        *Profile `json:"profile,omitempty"`
}

// GenerateResult is the caller-visible outcome of a generation run.
type GenerateResult struct {
	ResumeID string `json:"resumeId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ATSScore int    `json:"atsScore"`
	Style    string `json:"style"`
	Refined  bool   `json:"refined"`
}

// ExtractJobFactsInput is the input for job fact extraction.
type ExtractJobFactsInput struct {
	JobDescription string `json:"jobDescription"`
}

// DraftResumeInput is the input for resume drafting. ProfileContext and
// DocumentsContext are pre-rendered text blocks.
type DraftResumeInput struct {
	JobDescription   string `json:"jobDescription"`
	ProfileContext   string `json:"profileContext"`
	DocumentsContext string `json:"documentsContext"`
	Style            string `json:"style"`
}

// AnalyzeComplianceInput is the input for compliance analysis of a
// drafted resume against the source documents.
type AnalyzeComplianceInput struct {
	JobTitle         string `json:"jobTitle"`
	Company          string `json:"company"`
	JobDescription   string `json:"jobDescription"`
	ResumeContent    string `json:"resumeContent"`
	DocumentsContext string `json:"documentsContext"`
	ATSScore         int    `json:"atsScore"`
}

// ReformatResumeInput is the input for analysis-driven reformatting.
type ReformatResumeInput struct {
	JobTitle         string `json:"jobTitle"`
	Company          string `json:"company"`
	JobDescription   string `json:"jobDescription"`
	ResumeContent    string `json:"resumeContent"`
	DocumentsContext string `json:"documentsContext"`
	Analysis         string `json:"analysis"`
}

// ScoreResumeInput is the input for model-based resume scoring.
type ScoreResumeInput struct {
	JobDescription string `json:"jobDescription"`
	ResumeContent  string `json:"resumeContent"`
}

// AnalyzeResult is the outcome of a standalone compliance analysis.
type AnalyzeResult struct {
	ResumeID string `json:"resumeId"`
	Analysis string `json:"analysis"`
}

// ReformatResult is the outcome of a user-approved reformat.
type ReformatResult struct {
	ResumeID string `json:"resumeId"`
	Content  string `json:"content"`
	ATSScore int    `json:"atsScore"`
}
