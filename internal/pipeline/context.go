package pipeline

import (
	"fmt"
	"strings"

	"tailor/internal/types"
)

const documentSeparator = "\n\n---\n\n"

// RenderDocumentsContext renders the uploaded documents as the drafting
// context block. A document whose text was never extracted shows an
// explicit placeholder so the model knows the document exists but its
// content is unavailable.
func RenderDocumentsContext(docs []types.SourceDocument) string {
	if len(docs) == 0 {
		return "No documents found."
	}

	parts := make([]string, len(docs))
	for i, doc := range docs {
		text := "[No text extracted]"
		if doc.ExtractedText != nil && *doc.ExtractedText != "" {
			text = *doc.ExtractedText
		}
		parts[i] = fmt.Sprintf("%s (%s):\n%s", doc.Name, doc.Type, text)
	}
	return strings.Join(parts, documentSeparator)
}

// RenderVerificationContext renders the documents as the source-of-truth
// block used by compliance analysis and reformatting.
func RenderVerificationContext(docs []types.SourceDocument) string {
	if len(docs) == 0 {
		return "No original documents available"
	}

	parts := make([]string, len(docs))
	for i, doc := range docs {
		text := ""
		if doc.ExtractedText != nil {
			text = *doc.ExtractedText
		}
		parts[i] = fmt.Sprintf("[%s: %s]\n%s", strings.ToUpper(string(doc.Type)), doc.Name, text)
	}
	return strings.Join(parts, documentSeparator)
}

// RenderProfileContext renders the optional user profile as labeled lines
// for the drafting prompt. Absent fields render empty so the model never
// sees an invented value.
func RenderProfileContext(profile *types.Profile) string {
	name := "User"
	var email, phone, location, headline string
	if profile != nil {
		if profile.FullName != "" {
			name = profile.FullName
		}
		email = profile.Email
		phone = profile.Phone
		location = profile.Location
		headline = profile.Headline
	}

	lines := []string{
		"Name: " + name,
		"Email: " + email,
		"Phone: " + phone,
		"Location: " + location,
		"Headline: " + headline,
	}
	return strings.Join(lines, "\n")
}
