package pipeline

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"tailor/internal/ai"
	"tailor/internal/config"
	"tailor/internal/errors"
	"tailor/internal/store"
	"tailor/internal/types"
)

// mockProvider returns canned completions and records the inputs it saw.
type mockProvider struct {
	extractResponse  string
	extractErr       error
	draftResponse    string
	draftErr         error
	analyzeResponse  string
	analyzeErr       error
	reformatResponse string
	reformatErr      error
	scoreResponse    string

	draftCalls    int
	analyzeCalls  int
	reformatCalls int
	lastDraft     types.DraftResumeInput
	lastAnalyze   types.AnalyzeComplianceInput
}

func (m *mockProvider) ExtractJobFacts(ctx context.Context, input types.ExtractJobFactsInput) (string, *ai.TokenUsage, error) {
	return m.extractResponse, nil, m.extractErr
}

func (m *mockProvider) DraftResume(ctx context.Context, input types.DraftResumeInput) (string, *ai.TokenUsage, error) {
	m.draftCalls++
	m.lastDraft = input
	return m.draftResponse, nil, m.draftErr
}

func (m *mockProvider) AnalyzeCompliance(ctx context.Context, input types.AnalyzeComplianceInput) (string, *ai.TokenUsage, error) {
	m.analyzeCalls++
	m.lastAnalyze = input
	return m.analyzeResponse, nil, m.analyzeErr
}

func (m *mockProvider) ReformatResume(ctx context.Context, input types.ReformatResumeInput) (string, *ai.TokenUsage, error) {
	m.reformatCalls++
	return m.reformatResponse, nil, m.reformatErr
}

func (m *mockProvider) ScoreResume(ctx context.Context, input types.ScoreResumeInput) (string, *ai.TokenUsage, error) {
	return m.scoreResponse, nil, nil
}

func (m *mockProvider) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "mock", Available: true}
}

func (m *mockProvider) Close() error { return nil }

const testJobDescription = "Senior Golang engineer building distributed systems with Postgres"

func newTestOrchestrator(provider *mockProvider, policy config.PipelineConfig) (*Orchestrator, *store.Store) {
	logger := errors.NewLogger(slog.LevelError)
	st := store.NewMemoryStore()
	timeouts := StageTimeouts{
		Extract:  5 * time.Second,
		Draft:    5 * time.Second,
		Analyze:  5 * time.Second,
		Reformat: 5 * time.Second,
	}
	orchestrator := NewOrchestrator(
		NewFactExtractor(provider, policy, logger),
		NewDraftGenerator(provider, logger),
		NewComplianceAnalyzer(provider, logger),
		NewComplianceReformatter(provider, logger),
		st,
		policy,
		timeouts,
		logger,
	)
	return orchestrator, st
}

func defaultPolicy() config.PipelineConfig {
	return config.PipelineConfig{
		AlwaysRefine:    false,
		RefineThreshold: 75,
		FallbackTitle:   "Position",
		MaxKeywords:     30,
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	provider := &mockProvider{}
	orchestrator, _ := newTestOrchestrator(provider, defaultPolicy())

	t.Run("EmptyUserID", func(t *testing.T) {
		_, err := orchestrator.Generate(context.Background(), "  ", types.GenerateRequest{
			JobDescription: testJobDescription,
		})
		if err == nil {
			t.Fatal("Expected validation error for empty user id")
		}
	})

	t.Run("EmptyJobDescription", func(t *testing.T) {
		_, err := orchestrator.Generate(context.Background(), "user-1", types.GenerateRequest{})
		if err == nil {
			t.Fatal("Expected validation error for empty job description")
		}
	})

	if provider.draftCalls != 0 {
		t.Errorf("Validation failures must not reach the provider, got %d draft calls", provider.draftCalls)
	}
}

func TestGenerateDraftOnly(t *testing.T) {
	provider := &mockProvider{
		extractResponse: "Job Title: Staff Engineer\nCompany: Initech",
		draftResponse:   "Golang engineer, distributed systems, Postgres.",
	}
	policy := defaultPolicy()
	policy.RefineThreshold = 0 // never refine
	orchestrator, st := newTestOrchestrator(provider, policy)

	result, err := orchestrator.Generate(context.Background(), "user-1", types.GenerateRequest{
		JobDescription: testJobDescription,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.Refined {
		t.Error("Expected unrefined result below threshold")
	}
	if result.Content != provider.draftResponse {
		t.Errorf("Expected draft content, got %q", result.Content)
	}
	if result.Title != "Staff Engineer at Initech" {
		t.Errorf("Expected composed title, got %q", result.Title)
	}
	if result.Style != "professional" {
		t.Errorf("Expected default style, got %q", result.Style)
	}
	if provider.analyzeCalls != 0 || provider.reformatCalls != 0 {
		t.Errorf("Refinement must be skipped, got analyze=%d reformat=%d",
			provider.analyzeCalls, provider.reformatCalls)
	}

	resume, err := st.Resumes.GetByID(context.Background(), "user-1", result.ResumeID)
	if err != nil {
		t.Fatalf("Persisted resume not found: %v", err)
	}
	if resume.Content != provider.draftResponse || resume.ATSScore != result.ATSScore {
		t.Errorf("Persisted resume diverges from result: %+v", resume)
	}
	if resume.Metadata.Refined {
		t.Error("Metadata must record the unrefined run")
	}
	if resume.JobPostingID == nil {
		t.Fatal("Resume must reference its job posting")
	}

	posting, err := st.JobPostings.GetByID(context.Background(), "user-1", *resume.JobPostingID)
	if err != nil {
		t.Fatalf("Persisted job posting not found: %v", err)
	}
	if posting.Title != "Staff Engineer" || posting.Company != "Initech" {
		t.Errorf("Posting facts wrong: %+v", posting)
	}
	if posting.Description != testJobDescription {
		t.Error("Posting must retain the raw job description")
	}
	if len(posting.Keywords) == 0 || len(posting.Keywords) > policy.MaxKeywords {
		t.Errorf("Keywords not persisted within cap: %v", posting.Keywords)
	}
}

func TestGenerateRefinesBelowThreshold(t *testing.T) {
	provider := &mockProvider{
		extractResponse:  "Job Title: Staff Engineer\nCompany: Initech",
		draftResponse:    "A plain draft without relevant words.",
		analyzeResponse:  "- [REPHRASE] Mention Golang explicitly (from: resume.pdf)",
		reformatResponse: "Senior Golang engineer building distributed systems with Postgres.",
	}
	orchestrator, _ := newTestOrchestrator(provider, defaultPolicy())

	result, err := orchestrator.Generate(context.Background(), "user-1", types.GenerateRequest{
		JobDescription: testJobDescription,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !result.Refined {
		t.Error("Expected refined result")
	}
	if result.Content != provider.reformatResponse {
		t.Errorf("Expected reformatted content, got %q", result.Content)
	}
	if result.ATSScore != 100 {
		t.Errorf("Expected rescored 100, got %d", result.ATSScore)
	}
	if provider.analyzeCalls != 1 || provider.reformatCalls != 1 {
		t.Errorf("Expected exactly one refinement pass, got analyze=%d reformat=%d",
			provider.analyzeCalls, provider.reformatCalls)
	}
	if provider.lastAnalyze.JobTitle != "Staff Engineer" {
		t.Errorf("Analyzer must receive extracted facts, got %q", provider.lastAnalyze.JobTitle)
	}
}

func TestGenerateAnalyzeFailureKeepsDraft(t *testing.T) {
	provider := &mockProvider{
		extractResponse: "Job Title: Staff Engineer\nCompany: Initech",
		draftResponse:   "A plain draft without relevant words.",
		analyzeErr:      stderrors.New("model unavailable"),
	}
	orchestrator, st := newTestOrchestrator(provider, defaultPolicy())

	result, err := orchestrator.Generate(context.Background(), "user-1", types.GenerateRequest{
		JobDescription: testJobDescription,
	})
	if err != nil {
		t.Fatalf("Refinement failure must not fail the run: %v", err)
	}
	if result.Refined {
		t.Error("Result must fall back to the draft")
	}
	if result.Content != provider.draftResponse {
		t.Errorf("Expected draft content, got %q", result.Content)
	}
	if provider.reformatCalls != 0 {
		t.Error("Reformat must not run after a failed analysis")
	}

	resume, err := st.Resumes.GetByID(context.Background(), "user-1", result.ResumeID)
	if err != nil {
		t.Fatalf("Draft must still be persisted: %v", err)
	}
	if resume.Metadata.Refined {
		t.Error("Metadata must record the fallback")
	}
}

func TestGenerateFabricationGuardKeepsDraft(t *testing.T) {
	provider := &mockProvider{
		extractResponse: "Job Title: Staff Engineer\nCompany: Initech",
		draftResponse:   "A plain draft without relevant words.",
		analyzeResponse: "- [GAP] Quantum Computing certification",
		// The reformatted text reintroduces the flagged gap.
		reformatResponse: "Engineer holding a Quantum Computing certification.",
	}
	orchestrator, _ := newTestOrchestrator(provider, defaultPolicy())

	result, err := orchestrator.Generate(context.Background(), "user-1", types.GenerateRequest{
		JobDescription: testJobDescription,
	})
	if err != nil {
		t.Fatalf("Guard rejection must not fail the run: %v", err)
	}
	if result.Refined {
		t.Error("Guarded output must be discarded")
	}
	if result.Content != provider.draftResponse {
		t.Errorf("Expected draft content after guard rejection, got %q", result.Content)
	}
	if provider.reformatCalls != 1 {
		t.Errorf("Expected a single reformat attempt, got %d", provider.reformatCalls)
	}
}

func TestGenerateDraftFailureIsFatal(t *testing.T) {
	provider := &mockProvider{
		extractResponse: "Job Title: Staff Engineer",
		draftErr:        stderrors.New("quota exceeded"),
	}
	orchestrator, st := newTestOrchestrator(provider, defaultPolicy())

	_, err := orchestrator.Generate(context.Background(), "user-1", types.GenerateRequest{
		JobDescription: testJobDescription,
	})
	if err == nil {
		t.Fatal("Expected draft failure to abort the run")
	}

	resumes, listErr := st.Resumes.ListByUser(context.Background(), "user-1")
	if listErr != nil {
		t.Fatalf("ListByUser: %v", listErr)
	}
	if len(resumes) != 0 {
		t.Errorf("Nothing must be persisted after a fatal failure, got %d resumes", len(resumes))
	}
}

func TestGenerateExtractionFailureUsesFallbackTitle(t *testing.T) {
	provider := &mockProvider{
		extractErr:    stderrors.New("timeout"),
		draftResponse: "Golang engineer, distributed systems, Postgres, senior, building.",
	}
	policy := defaultPolicy()
	policy.RefineThreshold = 0
	orchestrator, _ := newTestOrchestrator(provider, policy)

	result, err := orchestrator.Generate(context.Background(), "user-1", types.GenerateRequest{
		JobDescription: testJobDescription,
	})
	if err != nil {
		t.Fatalf("Extraction failure must not fail the run: %v", err)
	}
	if result.Title != "Position" {
		t.Errorf("Expected fallback title, got %q", result.Title)
	}
}

func TestGenerateRendersDocumentContext(t *testing.T) {
	provider := &mockProvider{
		extractResponse: "Job Title: Staff Engineer",
		draftResponse:   "Golang engineer, distributed systems, Postgres, senior, building.",
	}
	policy := defaultPolicy()
	policy.RefineThreshold = 0
	orchestrator, st := newTestOrchestrator(provider, policy)

	ctx := context.Background()
	text := "built services at Initech"
	if err := st.Documents.Create(ctx, types.SourceDocument{
		ID: "doc-1", UserID: "user-1", Name: "resume.pdf",
		Type: types.DocumentTypeResume, ExtractedText: &text,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Create document: %v", err)
	}
	if err := st.Documents.Create(ctx, types.SourceDocument{
		ID: "doc-2", UserID: "user-1", Name: "scan.pdf",
		Type: types.DocumentTypeOther,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Create document: %v", err)
	}
	// Another user's document must never leak into the context.
	if err := st.Documents.Create(ctx, types.SourceDocument{
		ID: "doc-3", UserID: "user-2", Name: "private.pdf",
		Type: types.DocumentTypeResume,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Create document: %v", err)
	}

	result, err := orchestrator.Generate(ctx, "user-1", types.GenerateRequest{
		JobDescription: testJobDescription,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	docsContext := provider.lastDraft.DocumentsContext
	if !strings.Contains(docsContext, "built services at Initech") {
		t.Errorf("Extracted text missing from draft context: %q", docsContext)
	}
	if !strings.Contains(docsContext, "[No text extracted]") {
		t.Errorf("Unextracted document placeholder missing: %q", docsContext)
	}
	if strings.Contains(docsContext, "private.pdf") {
		t.Error("Another user's document leaked into the draft context")
	}

	resume, err := st.Resumes.GetByID(ctx, "user-1", result.ResumeID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if resume.Metadata.DocumentCount != 2 {
		t.Errorf("Expected document count 2, got %d", resume.Metadata.DocumentCount)
	}
}
