package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"tailor/internal/config"
	tailorErrors "tailor/internal/errors"
	"tailor/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	httpClient     *http.Client
	config         *config.OperationAIConfig
	operation      string
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *tailorErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *tailorErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, tailorErrors.NewAIError(tailorErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	// Initialize circuit breaker with operation-specific configuration
	circuitBreaker := NewAICircuitBreaker(operationType, cfg, logger)
	modelBreaker := NewModelCircuitBreaker(operationType, cfg, logger)

	return &GeminiProvider{
		client: client,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		operation:      operationType,
		circuitBreaker: circuitBreaker,
		modelBreaker:   modelBreaker,
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	// Create a timeout context for the model check
	timeout := getAIModelCheckTimeout()
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Get model information from Gemini API with circuit breaker
	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		// Log the error for debugging
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	// Model is available, populate info
	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	// Log successful check
	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Log retry attempt
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			// Use crypto/rand for secure random jitter
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	// Log final failure
	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors (timeouts, connection issues)
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true // Retry on timeouts
		}
		// Consider other network errors retryable (e.g., connection refused)
		return true
	}

	// Check for Google API errors (HTTP status codes)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeTextOperation runs a completion with common tracing, circuit breaker,
// and retry logic, returning the raw response text. All pipeline operations
// produce plain text that downstream code parses deterministically.
func (g *GeminiProvider) executeTextOperation(
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	spanAttributes ...attribute.KeyValue,
) (string, *TokenUsage, error) {
	tracer := otel.Tracer("tailor.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	// Set base attributes
	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	genaiConfig := &genai.GenerateContentConfig{}
	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, tailorErrors.NewAIError(tailorErrors.ErrCodeAIServiceFailed, "Failed to generate content for "+operationName, err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, tailorErrors.NewAIError("AI_EMPTY_RESPONSE", "Empty AI response for "+operationName, nil)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.length", len(text)),
	)
	return text, tokenUsage, nil
}

// ExtractJobFacts implements AIProvider interface for job fact extraction
func (g *GeminiProvider) ExtractJobFacts(ctx context.Context, input types.ExtractJobFactsInput) (string, *TokenUsage, error) {
	systemPrompt := g.systemPromptFor("extract")
	userPrompt := fmt.Sprintf(g.userPromptFor("extract"), input.JobDescription)

	return g.executeTextOperation(
		ctx,
		"extract_job_facts",
		userPrompt,
		systemPrompt,
		attribute.Int("input.job_length", len(input.JobDescription)),
	)
}

// DraftResume implements AIProvider interface for resume drafting
func (g *GeminiProvider) DraftResume(ctx context.Context, input types.DraftResumeInput) (string, *TokenUsage, error) {
	systemPrompt := fmt.Sprintf(g.systemPromptFor("draft"), input.Style)
	userPrompt := fmt.Sprintf(g.userPromptFor("draft"),
		input.JobDescription, input.ProfileContext, input.DocumentsContext)

	output, tokenUsage, err := g.executeTextOperation(
		ctx,
		"draft_resume",
		userPrompt,
		systemPrompt,
		attribute.Int("input.job_length", len(input.JobDescription)),
		attribute.Int("input.documents_length", len(input.DocumentsContext)),
		attribute.String("input.style", input.Style),
	)
	if err != nil {
		return "", nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int("output.resume_length", len(output)))
	}

	return output, tokenUsage, nil
}

// AnalyzeCompliance implements AIProvider interface for compliance analysis
func (g *GeminiProvider) AnalyzeCompliance(ctx context.Context, input types.AnalyzeComplianceInput) (string, *TokenUsage, error) {
	systemPrompt := g.systemPromptFor("analyze")
	userPrompt := fmt.Sprintf(g.userPromptFor("analyze"),
		input.JobTitle, input.Company, input.JobDescription,
		input.ResumeContent, input.DocumentsContext, input.ATSScore)

	return g.executeTextOperation(
		ctx,
		"analyze_compliance",
		userPrompt,
		systemPrompt,
		attribute.Int("input.resume_length", len(input.ResumeContent)),
		attribute.Int("input.documents_length", len(input.DocumentsContext)),
		attribute.Int("input.ats_score", input.ATSScore),
	)
}

// ReformatResume implements AIProvider interface for analysis-driven reformatting
func (g *GeminiProvider) ReformatResume(ctx context.Context, input types.ReformatResumeInput) (string, *TokenUsage, error) {
	systemPrompt := g.systemPromptFor("reformat")
	userPrompt := fmt.Sprintf(g.userPromptFor("reformat"),
		input.JobTitle, input.Company, input.JobDescription,
		input.ResumeContent, input.DocumentsContext, input.Analysis)

	output, tokenUsage, err := g.executeTextOperation(
		ctx,
		"reformat_resume",
		userPrompt,
		systemPrompt,
		attribute.Int("input.resume_length", len(input.ResumeContent)),
		attribute.Int("input.analysis_length", len(input.Analysis)),
	)
	if err != nil {
		return "", nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int("output.resume_length", len(output)))
	}

	return output, tokenUsage, nil
}

// ScoreResume implements AIProvider interface for model-based resume scoring
func (g *GeminiProvider) ScoreResume(ctx context.Context, input types.ScoreResumeInput) (string, *TokenUsage, error) {
	systemPrompt := g.systemPromptFor("score")
	userPrompt := fmt.Sprintf(g.userPromptFor("score"),
		input.JobDescription, input.ResumeContent)

	return g.executeTextOperation(
		ctx,
		"score_resume",
		userPrompt,
		systemPrompt,
		attribute.Int("input.resume_length", len(input.ResumeContent)),
	)
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	aiHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && modelHealthy

	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	// Probably needed in streaming mode
	return nil
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// getAIModelCheckTimeout returns the configured AI model check timeout
func getAIModelCheckTimeout() time.Duration {
	// Use default timeout since we don't have access to config here
	// This function should be refactored to accept timeout as parameter
	// Fallback to default
	return 10 * time.Second
}

// systemPromptFor returns the system prompt for the named operation. A
// configured override applies only to the operation this provider was
// built for; shared operations (score runs on the reformat provider)
// keep their built-in prompts.
func (g *GeminiProvider) systemPromptFor(op string) string {
	override := ""
	if op == g.operation {
		override = g.config.Prompts.System
	}

	switch op {
	case "extract":
		return resolvePrompt(override, DefaultSystemPrompts.Extract)
	case "draft":
		return resolvePrompt(override, DefaultSystemPrompts.Draft)
	case "analyze":
		return resolvePrompt(override, DefaultSystemPrompts.Analyze)
	case "reformat":
		return resolvePrompt(override, DefaultSystemPrompts.Reformat)
	case "score":
		return resolvePrompt(override, DefaultSystemPrompts.Score)
	default:
		return ""
	}
}

// userPromptFor returns the user prompt template for the named operation
func (g *GeminiProvider) userPromptFor(op string) string {
	override := ""
	if op == g.operation {
		override = g.config.Prompts.User
	}

	switch op {
	case "extract":
		return resolvePrompt(override, DefaultUserPrompts.Extract)
	case "draft":
		return resolvePrompt(override, DefaultUserPrompts.Draft)
	case "analyze":
		return resolvePrompt(override, DefaultUserPrompts.Analyze)
	case "reformat":
		return resolvePrompt(override, DefaultUserPrompts.Reformat)
	case "score":
		return resolvePrompt(override, DefaultUserPrompts.Score)
	default:
		return ""
	}
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt from the configuration (inline or loaded from a file at startup).
// 2. A hardcoded default prompt.
func resolvePrompt(fromConfig, fromDefault string) string {
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
