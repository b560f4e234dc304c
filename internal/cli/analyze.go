package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"tailor/internal/ai"
	"tailor/internal/common"
	"tailor/internal/pipeline"
	"tailor/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] [job-description-file] [source-document-files...]",
	Short: "Analyze a resume for unsupported claims",
	Long: `Analyze a resume against the job description and your source documents
to categorize every claim it makes:

- REPHRASE: restates content found in the source documents
- INFERENCE: reasonably follows from the source documents
- GAP: has no support in the source documents

Claims tagged GAP are candidates for removal; feed the analysis to the
reformat endpoint to strip them. Text, PDF, and DOCX files are supported.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for the analyze operation
	analyzeAIConfig := cfg.GetAnalyzeConfig()
	aiService, err := ai.NewService(&analyzeAIConfig, "analyze", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	analyzer := pipeline.NewComplianceAnalyzer(aiService.Provider, logger)

	createInput := func(contents []string) (types.AnalyzeComplianceInput, error) {
		if len(contents) < 2 {
			return types.AnalyzeComplianceInput{}, fmt.Errorf("expected at least 2 file paths, got %d", len(contents))
		}
		resume := contents[0]
		jobDescription := contents[1]

		docs := make([]types.SourceDocument, 0, len(contents)-2)
		for i, text := range contents[2:] {
			extracted := text
			docs = append(docs, types.SourceDocument{
				Name:          filepath.Base(args[i+2]),
				Type:          types.DocumentTypeOther,
				ExtractedText: &extracted,
			})
		}

		return types.AnalyzeComplianceInput{
			JobDescription:   jobDescription,
			ResumeContent:    resume,
			DocumentsContext: pipeline.RenderVerificationContext(docs),
			ATSScore:         pipeline.ScoreKeywords(jobDescription, resume).Score,
		}, nil
	}

	logDetails := func(input types.AnalyzeComplianceInput, cfg common.CommandConfig) {
		logger.Info("Starting compliance analysis",
			"resume_chars", len(input.ResumeContent),
			"job_chars", len(input.JobDescription),
			"source_documents", len(args)-2,
			"output_format", cfg.OutputFormat)
	}

	// Create a wrapper function that uses our specific AI service
	analyzeOperation := func(ctx context.Context, input types.AnalyzeComplianceInput) (types.ComplianceReport, *ai.TokenUsage, error) {
		return analyzer.Analyze(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args,
		createInput,
		analyzeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Compliance analysis completed successfully")
	return nil
}
