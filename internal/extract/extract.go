package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"tailor/internal/errors"
	"tailor/internal/utils"
)

// UnsupportedPlaceholder is persisted as the extracted text of formats
// the service cannot read, so downstream prompts see the document exists
// without inventing its content.
const UnsupportedPlaceholder = "[Unsupported file format]"

// Text extracts plain text from an uploaded document based on its file
// extension. Unsupported formats yield the placeholder, not an error;
// a parse failure of a supported format is an error.
func Text(name string, data []byte) (string, error) {
	switch ext := utils.GetFileExtension(name); ext {
	case ".pdf":
		text, err := pdfText(data)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeExtractionFailed,
				fmt.Sprintf("Failed to extract PDF text: %s", name), err)
		}
		return sanitizeText(text), nil
	case ".docx":
		text, err := docxText(data)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeExtractionFailed,
				fmt.Sprintf("Failed to extract DOCX text: %s", name), err)
		}
		return sanitizeText(text), nil
	default:
		if utils.IsTextFile(name) {
			return sanitizeText(string(data)), nil
		}
		return UnsupportedPlaceholder, nil
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	content, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sanitizeText strips null bytes, which Postgres rejects in TEXT
// columns, and trims surrounding whitespace.
func sanitizeText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
