package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tailor/internal/observability"
	"tailor/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createGenerateHandler wraps the generation pipeline with observability
func (s *Server) createGenerateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("tailor.api")
		ctx, span := tracer.Start(ctx, "api.generate")
		defer span.End()

		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}

		// Parse request
		var req types.GenerateRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		// Validation
		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		// Size validation
		if s.MaxUploadSize > 0 && len(req.JobDescription) > int(s.MaxUploadSize/2) {
			err := fmt.Errorf("job description too large: %d chars", len(req.JobDescription))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job description too large", fmt.Sprintf("jobDescription exceeds recommended size limit of %d characters", s.MaxUploadSize/2), http.StatusBadRequest)
			return
		}

		// Add request attributes to span
		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("request.style", req.Style),
			attribute.String("operation", "generate"),
		)

		metrics := om.GetMetrics()
		start := time.Now()
		result, err := s.Deps.Orchestrator.Generate(ctx, userID, req)
		metrics.RecordGenerationDuration(ctx, time.Since(start).Seconds(), om,
			attribute.Bool("success", err == nil))

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "pipeline"))
			metrics.RecordBusinessMetric(ctx, "resume_generated", false, om,
				attribute.String("error", err.Error()))
			writeAppError(w, s.Logger, "Failed to generate resume", err)
			return
		}

		// Record success metrics
		metrics.RecordBusinessMetric(ctx, "resume_generated", true, om,
			attribute.Int("output.content_length", len(result.Content)),
			attribute.Int("ats.score", result.ATSScore),
			attribute.Bool("refined", result.Refined))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.content_length", len(result.Content)),
			attribute.Int("ats.score", result.ATSScore),
			attribute.Bool("refined", result.Refined),
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
