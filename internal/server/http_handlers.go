package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"tailor/internal/ai"
	"tailor/internal/config"
	tailorErrors "tailor/internal/errors"
	"tailor/internal/store"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler provides a comprehensive health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "tailor",
		"version": s.Version,
	}

	// Check AI model availability for all pipeline operations
	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus

	// Check database connectivity
	dbStatus := s.checkDatabaseHealth()
	response["database"] = dbStatus

	// Check certificate status if certificate manager is available
	certStatus := s.checkCertificateHealth()
	if certStatus != nil {
		response["certificates"] = certStatus
	}

	// Determine overall health status
	overallHealthy := true
	for _, modelStatus := range aiStatus {
		if modelInfo, ok := modelStatus.(map[string]any); ok {
			if available, exists := modelInfo["available"]; exists {
				if avail, ok := available.(bool); ok && !avail {
					overallHealthy = false
					break
				}
			}
		}
	}

	if healthy, ok := dbStatus["healthy"].(bool); ok && !healthy {
		overallHealthy = false
	}

	// Check certificate health
	if certStatus != nil {
		if healthy, exists := certStatus["healthy"]; exists {
			if certHealthy, ok := healthy.(bool); ok && !certHealthy {
				overallHealthy = false
			}
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkAIModelsHealth checks the health of the AI models behind each
// pipeline operation
func (s *Server) checkAIModelsHealth() map[string]any {
	// Use configurable health check timeout
	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)
	for _, operation := range []string{"extract", "draft", "analyze", "reformat"} {
		aiStatus[operation] = s.checkOperationModel(ctx, operation)
	}

	return aiStatus
}

// operationConfig returns the effective AI configuration for one
// pipeline operation
func (s *Server) operationConfig(operation string) *config.OperationAIConfig {
	var cfg config.OperationAIConfig
	switch operation {
	case "extract":
		cfg = s.AppConfig.GetExtractConfig()
	case "draft":
		cfg = s.AppConfig.GetDraftConfig()
	case "reformat":
		cfg = s.AppConfig.GetReformatConfig()
	default:
		cfg = s.AppConfig.GetAnalyzeConfig()
	}
	return &cfg
}

// checkOperationModel reports the model status for one pipeline operation
func (s *Server) checkOperationModel(ctx context.Context, operation string) any {
	opConfig := s.operationConfig(operation)
	service, err := ai.NewService(opConfig, operation, s.Logger)
	if err != nil {
		return map[string]any{
			"available": false,
			"error":     fmt.Sprintf("Failed to create %s service: %v", operation, err),
		}
	}
	return service.GetModelInfo(ctx)
}

// checkDatabaseHealth reports database connectivity
func (s *Server) checkDatabaseHealth() map[string]any {
	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Deps.Store.Ping(ctx); err != nil {
		return map[string]any{
			"healthy": false,
			"error":   err.Error(),
		}
	}
	return map[string]any{
		"healthy": true,
		"enabled": s.AppConfig.Database.Enabled,
	}
}

// checkCertificateHealth checks the health of TLS certificates
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertificateManager == nil {
		return nil
	}

	certStatus := make(map[string]any)

	// Check certificate expiry
	timeToExpiry, err := s.CertificateManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	// Consider certificates unhealthy if they expire within 24 hours
	criticalThreshold := 24 * time.Hour
	warningThreshold := 7 * 24 * time.Hour // 7 days

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())
	certStatus["time_to_expiry"] = timeToExpiry.String()

	if timeToExpiry <= 0 {
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
		certStatus["message"] = "Certificate has expired"
	} else if timeToExpiry <= criticalThreshold {
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
		certStatus["message"] = "Certificate expires within 24 hours"
	} else if timeToExpiry <= warningThreshold {
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
		certStatus["message"] = "Certificate expires within 7 days"
	} else {
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
		certStatus["message"] = "Certificate is valid"
	}

	// Add auto-reload status
	autoReload := map[string]any{
		"enabled": s.TLSConfig.AutoReload.Enabled,
	}
	if s.CertificateManager.fileWatcher != nil {
		autoReload["watcher_running"] = s.CertificateManager.fileWatcher.IsRunning()
		autoReload["watched_files"] = s.CertificateManager.fileWatcher.GetWatchedFiles()
	}
	certStatus["auto_reload"] = autoReload

	// Add certificate metrics
	metrics := s.CertificateManager.GetMetrics()
	if metrics != nil {
		certStatus["metrics"] = map[string]any{
			"reload_count":         metrics.ReloadCount,
			"reload_success_count": metrics.ReloadSuccessCount,
			"reload_failure_count": metrics.ReloadFailureCount,
			"last_reload_time":     metrics.LastReloadTime,
			"last_reload_success":  metrics.LastReloadSuccess,
			"last_reload_error":    metrics.LastReloadError,
		}
	}

	return certStatus
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "tailor",
		"version": s.Version,
		"server": map[string]any{
			"max_upload_size_bytes": s.MaxUploadSize,
		},
		"pipeline": map[string]any{
			"always_refine":    s.AppConfig.Pipeline.AlwaysRefine,
			"refine_threshold": s.AppConfig.Pipeline.RefineThreshold,
			"max_keywords":     s.AppConfig.Pipeline.MaxKeywords,
		},
		"storage": map[string]any{
			"backend": s.AppConfig.Storage.Backend,
		},
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	// Add configuration info
	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// isFabricationError reports whether err is a fabrication-guard rejection
func isFabricationError(err error) bool {
	var appErr *tailorErrors.AppError
	return errors.As(err, &appErr) && appErr.Code == tailorErrors.ErrCodeFabricationDetected
}

// writeAppError maps an application error to an HTTP status and writes
// the standard error body
func writeAppError(w http.ResponseWriter, logger *tailorErrors.Logger, summary string, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	if errors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
		message = "Resource not found"
	} else {
		var appErr *tailorErrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case tailorErrors.ErrCodeNotFound, tailorErrors.ErrCodeFileNotFound:
				status = http.StatusNotFound
			case tailorErrors.ErrCodeInvalidRequest, tailorErrors.ErrCodeInvalidFormat:
				status = http.StatusBadRequest
			case tailorErrors.ErrCodeFabricationDetected:
				status = http.StatusUnprocessableEntity
			case tailorErrors.ErrCodeAnalysisUnavailable:
				status = http.StatusConflict
			default:
				switch appErr.Type {
				case tailorErrors.ErrorTypeValidation:
					status = http.StatusBadRequest
				case tailorErrors.ErrorTypeAI, tailorErrors.ErrorTypeNetwork:
					status = http.StatusBadGateway
				}
			}
			message = appErr.Message
		}
	}

	if status >= http.StatusInternalServerError {
		logger.LogError(err, summary)
	}
	writeErrorResponse(w, summary, message, status)
}
