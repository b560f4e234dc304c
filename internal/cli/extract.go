package cli

import (
	"fmt"

	"tailor/internal/common"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [document-file]",
	Short: "Extract plain text from a document",
	Long: `Extract plain text from a PDF, DOCX, or text document. This is the
same extraction the server runs when processing uploaded documents,
useful for checking what the pipeline will actually see.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var extractOutputFile string

func init() {
	extractCmd.Flags().StringVarP(&extractOutputFile, "output", "o", "", "Output file path (default: stdout)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	fileProcessor := common.NewFileProcessor(logger)
	contents, err := fileProcessor.ValidateAndReadFiles(args[0])
	if err != nil {
		return err
	}
	text := contents[0]

	if extractOutputFile != "" {
		if err := fileProcessor.WriteFile(extractOutputFile, text); err != nil {
			return err
		}
		logger.Info("Extracted text written successfully",
			"file", extractOutputFile,
			"chars", len(text))
		return nil
	}

	fmt.Println(text)
	return nil
}
