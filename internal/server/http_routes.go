package server

import (
	"net/http"
	"strings"

	"tailor/internal/observability"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes(om *observability.ObservabilityManager) *http.ServeMux {
	mux := http.NewServeMux()

	// Add middleware layers with observability
	rateLimitHandler := s.createRateLimitMiddleware(om)
	requestLimitHandler := s.requestSizeLimitMiddleware()

	protect := func(handler http.HandlerFunc) http.HandlerFunc {
		return rateLimitHandler(s.authMiddleware(requestLimitHandler(handler)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("POST /generate", protect(s.createGenerateHandler(om)))

	// Document uploads carry multipart bodies and enforce the upload
	// limit themselves, so they skip the JSON body size middleware.
	mux.HandleFunc("POST /documents",
		rateLimitHandler(s.authMiddleware(s.createUploadDocumentHandler(om))))
	mux.HandleFunc("GET /documents", protect(s.createListDocumentsHandler()))
	mux.HandleFunc("DELETE /documents/{id}", protect(s.createDeleteDocumentHandler()))
	mux.HandleFunc("POST /documents/{id}/process", protect(s.createProcessDocumentHandler(om)))

	mux.HandleFunc("GET /resumes", protect(s.createListResumesHandler()))
	mux.HandleFunc("GET /resumes/{id}", protect(s.createGetResumeHandler()))
	mux.HandleFunc("DELETE /resumes/{id}", protect(s.createDeleteResumeHandler()))
	mux.HandleFunc("POST /resumes/{id}/analyze", protect(s.createAnalyzeResumeHandler(om)))
	mux.HandleFunc("POST /resumes/{id}/reformat", protect(s.createReformatResumeHandler(om)))

	return mux
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		// Check for API key in X-API-Key header
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			// Check for Bearer token in Authorization header as fallback
			authHeader := r.Header.Get("Authorization")
			if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				apiKey = after
			}
		}

		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr)
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		// Validate API key
		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr,
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		// Log successful authentication
		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"client_ip", r.RemoteAddr,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// userIDFromRequest returns the requesting user's id. All stored data is
// scoped per user; the id comes from the X-User-ID header set by the
// frontend once its own session auth has run.
func (s *Server) userIDFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		writeErrorResponse(w, "Missing user id", "X-User-ID header is required", http.StatusBadRequest)
		return "", false
	}
	return userID, true
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxUploadSize > 0 {
				// Limit the request body size
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadSize)
			}

			next(w, r)
		}
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
