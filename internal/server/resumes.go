package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tailor/internal/ai"
	"tailor/internal/errors"
	"tailor/internal/observability"
	"tailor/internal/pipeline"
	"tailor/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createListResumesHandler lists the caller's generated resumes
func (s *Server) createListResumesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}

		resumes, err := s.Deps.Store.Resumes.ListByUser(r.Context(), userID)
		if err != nil {
			writeAppError(w, s.Logger, "Failed to list resumes", err)
			return
		}
		if resumes == nil {
			resumes = []types.GeneratedResume{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resumes); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createGetResumeHandler returns one generated resume
func (s *Server) createGetResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}

		resume, err := s.Deps.Store.Resumes.GetByID(r.Context(), userID, r.PathValue("id"))
		if err != nil {
			writeAppError(w, s.Logger, "Failed to load resume", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resume); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createDeleteResumeHandler removes a generated resume
func (s *Server) createDeleteResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}
		id := r.PathValue("id")

		if err := s.Deps.Store.Resumes.Delete(r.Context(), userID, id); err != nil {
			writeAppError(w, s.Logger, "Failed to delete resume", err)
			return
		}

		s.Logger.Info("Resume deleted", "resume_id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// loadResumeContext fetches the resume, its job posting, and the caller's
// documents. Analysis and reformatting both need the posting the resume
// was generated against; without it there is nothing to check claims
// against, so the operation is reported as unavailable.
func (s *Server) loadResumeContext(ctx context.Context, userID, resumeID string) (types.GeneratedResume, types.JobPosting, []types.SourceDocument, error) {
	resume, err := s.Deps.Store.Resumes.GetByID(ctx, userID, resumeID)
	if err != nil {
		return types.GeneratedResume{}, types.JobPosting{}, nil, err
	}

	if resume.JobPostingID == nil {
		return resume, types.JobPosting{}, nil, errors.NewValidationError(errors.ErrCodeAnalysisUnavailable,
			"Resume has no associated job posting", nil)
	}
	posting, err := s.Deps.Store.JobPostings.GetByID(ctx, userID, *resume.JobPostingID)
	if err != nil {
		return resume, types.JobPosting{}, nil, errors.NewValidationError(errors.ErrCodeAnalysisUnavailable,
			"Job posting for this resume is no longer available", err)
	}

	docs, err := s.Deps.Store.Documents.ListByUser(ctx, userID)
	if err != nil {
		return resume, posting, nil, err
	}

	return resume, posting, docs, nil
}

// createAnalyzeResumeHandler runs a standalone compliance analysis of a
// stored resume against the caller's source documents
func (s *Server) createAnalyzeResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("tailor.api")
		ctx, span := tracer.Start(ctx, "api.resumes.analyze")
		defer span.End()

		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}
		resumeID := r.PathValue("id")
		metrics := om.GetMetrics()

		resume, posting, docs, err := s.loadResumeContext(ctx, userID, resumeID)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, s.Logger, "Failed to analyze resume", err)
			return
		}

		// Create AI service for analyze operation
		analyzeConfig := s.AppConfig.GetAnalyzeConfig()
		aiService, err := ai.NewService(&analyzeConfig, "analyze", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		analyzer := pipeline.NewComplianceAnalyzer(aiService.Provider, s.Logger)
		input := types.AnalyzeComplianceInput{
			JobTitle:         posting.Title,
			Company:          posting.Company,
			JobDescription:   posting.Description,
			ResumeContent:    resume.Content,
			DocumentsContext: pipeline.RenderVerificationContext(docs),
			ATSScore:         resume.ATSScore,
		}

		var report types.ComplianceReport
		err = metrics.TrackAIOperationWithTokens(ctx, "analyze", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := analyzer.Analyze(ctx, input)
			report = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "compliance_analyzed", false, om)
			writeAppError(w, s.Logger, "Failed to analyze resume", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "compliance_analyzed", true, om,
			attribute.Int("claims_count", len(report.Claims)),
			attribute.Int("gap_count", len(report.GapClaims())))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("claims_count", len(report.Claims)),
		)

		w.Header().Set("Content-Type", "application/json")
		result := types.AnalyzeResult{ResumeID: resume.ID, Analysis: report.Raw}
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createReformatResumeHandler applies a user-approved analysis report to a
// stored resume, rescores it, and persists the updated content
func (s *Server) createReformatResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("tailor.api")
		ctx, span := tracer.Start(ctx, "api.resumes.reformat")
		defer span.End()

		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}
		resumeID := r.PathValue("id")
		metrics := om.GetMetrics()

		var req ReformatRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Analysis) == "" {
			writeErrorResponse(w, "Missing analysis", "analysis field is required", http.StatusBadRequest)
			return
		}

		resume, posting, docs, err := s.loadResumeContext(ctx, userID, resumeID)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, s.Logger, "Failed to reformat resume", err)
			return
		}

		// Create AI service for reformat operation
		reformatConfig := s.AppConfig.GetReformatConfig()
		aiService, err := ai.NewService(&reformatConfig, "reformat", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		verification := pipeline.RenderVerificationContext(docs)
		report := pipeline.ParseReport(req.Analysis)
		corpus := verification + "\n" + posting.Description
		input := types.ReformatResumeInput{
			JobTitle:         posting.Title,
			Company:          posting.Company,
			JobDescription:   posting.Description,
			ResumeContent:    resume.Content,
			DocumentsContext: verification,
			Analysis:         req.Analysis,
		}

		reformatter := pipeline.NewComplianceReformatter(aiService.Provider, s.Logger)
		var content string
		err = metrics.TrackAIOperationWithTokens(ctx, "reformat", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := reformatter.Reformat(ctx, input, report, corpus)
			content = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			if isFabricationError(err) {
				span.SetAttributes(attribute.String("error.type", "fabrication"))
				metrics.RecordBusinessMetric(ctx, "fabrication_blocked", true, om,
					attribute.String("resume_id", resume.ID))
			}
			metrics.RecordBusinessMetric(ctx, "resume_reformatted", false, om)
			writeAppError(w, s.Logger, "Failed to reformat resume", err)
			return
		}

		// Rescore through the model; an unparseable or failed scoring
		// call keeps the previous score rather than failing the reformat.
		score := resume.ATSScore
		scoreErr := metrics.TrackAIOperationWithTokens(ctx, "score", func(ctx context.Context) *observability.AIOperationResult {
			raw, tokenUsage, aiErr := aiService.Provider.ScoreResume(ctx, types.ScoreResumeInput{
				JobDescription: posting.Description,
				ResumeContent:  content,
			})
			if aiErr == nil {
				score = pipeline.ParseScore(raw, resume.ATSScore)
			}
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)
		if scoreErr != nil {
			s.Logger.Warn("Rescoring failed, keeping previous ATS score",
				"resume_id", resume.ID, "error", scoreErr)
		}

		if err := s.Deps.Store.Resumes.UpdateContentAndScore(ctx, userID, resume.ID, content, score); err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_reformatted", false, om)
			writeAppError(w, s.Logger, "Failed to save reformatted resume", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_reformatted", true, om,
			attribute.Int("ats.score", score))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("ats.score", score),
		)
		s.Logger.Info("Resume reformatted", "resume_id", resume.ID, "ats_score", score)

		w.Header().Set("Content-Type", "application/json")
		result := types.ReformatResult{ResumeID: resume.ID, Content: content, ATSScore: score}
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}
