package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"tailor/internal/common"
	"tailor/internal/store"
	"tailor/internal/types"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// localUserID scopes one-shot CLI runs in the in-memory store.
const localUserID = "local"

var generateCmd = &cobra.Command{
	Use:   "generate [job-description-file] [source-document-files...]",
	Short: "Generate a resume for a specific job description",
	Long: `Generate a resume for a specific job description using AI.
The first argument is the job description file; any further arguments are
source documents (existing resume, experience notes, skill lists) the
generated resume is grounded in. Text, PDF, and DOCX files are supported.

The run uses an in-memory store, so nothing is persisted. Use 'serve'
for the persistent HTTP API.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if generateConfig.OutputFormat == "" {
			generateConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(generateConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runGenerate,
}

var (
	generateConfig common.CommandConfig
	generateStyle  string
)

func init() {
	generateCmd.Flags().StringVarP(&generateConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	generateCmd.Flags().StringVar(&generateConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	generateCmd.Flags().StringVar(&generateStyle, "style", "", "Resume style (default: professional)")

	// Add completion for format flag
	_ = generateCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	ctx := cmd.Context()

	fileProcessor := common.NewFileProcessor(logger)
	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}
	jobDescription := contents[0]

	// Seed the in-memory store with the source documents so the pipeline
	// sees them the same way the HTTP API does.
	st := store.NewMemoryStore()
	for i, content := range contents[1:] {
		text := content
		doc := types.SourceDocument{
			ID:            uuid.NewString(),
			UserID:        localUserID,
			Name:          filepath.Base(args[i+1]),
			Type:          types.DocumentTypeOther,
			ExtractedText: &text,
			SizeBytes:     int64(len(content)),
			CreatedAt:     time.Now().UTC(),
		}
		if err := st.Documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("failed to stage source document %s: %w", doc.Name, err)
		}
	}

	orchestrator, err := buildOrchestrator(cfg, st, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting resume generation",
		"job_chars", len(jobDescription),
		"source_documents", len(contents)-1,
		"output_format", generateConfig.OutputFormat)

	result, err := orchestrator.Generate(ctx, localUserID, types.GenerateRequest{
		JobDescription: jobDescription,
		Style:          generateStyle,
	})
	if err != nil {
		return fmt.Errorf("failed to generate resume: %w", err)
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(*result, generateConfig); err != nil {
		return err
	}
	logger.Info("Resume generation completed successfully",
		"ats_score", result.ATSScore,
		"refined", result.Refined)
	return nil
}
