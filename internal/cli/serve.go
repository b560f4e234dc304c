package cli

import (
	"context"
	"fmt"

	"tailor/internal/ai"
	"tailor/internal/config"
	"tailor/internal/errors"
	"tailor/internal/pipeline"
	"tailor/internal/server"
	"tailor/internal/storage"
	"tailor/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for resume generation",
	Long: `Start an HTTP server that provides REST API endpoints for resume generation,
document management, and compliance analysis.

Available endpoints:
- POST /generate: Generate a resume for a job description
- POST /documents: Upload a source document (multipart)
- POST /documents/{id}/process: Extract text from an uploaded document
- POST /resumes/{id}/analyze: Run compliance analysis on a resume
- POST /resumes/{id}/reformat: Apply an approved analysis to a resume
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.mode", "tls-mode")
	bindFlag("server.tls.certfile", "cert-file")
	bindFlag("server.tls.keyfile", "key-file")
	bindFlag("server.tls.cafile", "ca-file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Validate TLS configuration after applying overrides
	tempConfig := &config.Config{Server: cfg.Server}
	if err := tempConfig.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	st, err := buildStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	objects, err := storage.NewLocalStore(cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	orchestrator, err := buildOrchestrator(cfg, st, logger)
	if err != nil {
		return err
	}

	serverCfg := server.ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		Version:       Version,
		TLSConfig:     cfg.Server.TLS,
		APIKeys:       cfg.Server.APIKeys,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		RateLimit:     &cfg.Server.RateLimit,
	}
	deps := server.Dependencies{
		Store:        st,
		Objects:      objects,
		Orchestrator: orchestrator,
	}
	return server.NewServer(cfg, serverCfg, deps, logger).Start()
}

// buildStore opens the configured persistence backend. Without a
// database the server falls back to in-memory repositories, which lose
// all data on restart.
func buildStore(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*store.Store, error) {
	if !cfg.Database.Enabled {
		logger.Warn("Database disabled, using in-memory store; data will not survive restarts")
		return store.NewMemoryStore(), nil
	}

	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Database.Migrate {
		if err := store.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return store.NewPGStore(db), nil
}

// buildOrchestrator wires the generation pipeline over per-operation AI
// services so each stage can use its own provider, model, and timeout.
func buildOrchestrator(cfg *config.Config, st *store.Store, logger *errors.Logger) (*pipeline.Orchestrator, error) {
	extractCfg := cfg.GetExtractConfig()
	extractService, err := ai.NewService(&extractCfg, "extract", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create extract AI service: %w", err)
	}

	draftCfg := cfg.GetDraftConfig()
	draftService, err := ai.NewService(&draftCfg, "draft", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft AI service: %w", err)
	}

	analyzeCfg := cfg.GetAnalyzeConfig()
	analyzeService, err := ai.NewService(&analyzeCfg, "analyze", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyze AI service: %w", err)
	}

	reformatCfg := cfg.GetReformatConfig()
	reformatService, err := ai.NewService(&reformatCfg, "reformat", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reformat AI service: %w", err)
	}

	timeouts := pipeline.StageTimeouts{
		Extract:  *extractCfg.Timeout,
		Draft:    *draftCfg.Timeout,
		Analyze:  *analyzeCfg.Timeout,
		Reformat: *reformatCfg.Timeout,
	}

	return pipeline.NewOrchestrator(
		pipeline.NewFactExtractor(extractService.Provider, cfg.Pipeline, logger),
		pipeline.NewDraftGenerator(draftService.Provider, logger),
		pipeline.NewComplianceAnalyzer(analyzeService.Provider, logger),
		pipeline.NewComplianceReformatter(reformatService.Provider, logger),
		st,
		cfg.Pipeline,
		timeouts,
		logger,
	), nil
}
