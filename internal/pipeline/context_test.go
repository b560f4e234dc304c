package pipeline

import (
	"strings"
	"testing"

	"tailor/internal/types"
)

func strPtr(s string) *string { return &s }

func TestRenderDocumentsContext(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		if got := RenderDocumentsContext(nil); got != "No documents found." {
			t.Errorf("Expected empty-set sentinel, got %q", got)
		}
	})

	t.Run("ExtractedAndUnextracted", func(t *testing.T) {
		docs := []types.SourceDocument{
			{Name: "resume.pdf", Type: types.DocumentTypeResume, ExtractedText: strPtr("ten years of Go")},
			{Name: "scan.pdf", Type: types.DocumentTypeOther, ExtractedText: nil},
		}
		got := RenderDocumentsContext(docs)

		if !strings.Contains(got, "resume.pdf (resume):\nten years of Go") {
			t.Errorf("Missing extracted document block in %q", got)
		}
		if !strings.Contains(got, "scan.pdf (other):\n[No text extracted]") {
			t.Errorf("Missing placeholder for unextracted document in %q", got)
		}
		if !strings.Contains(got, "\n\n---\n\n") {
			t.Errorf("Documents not separated in %q", got)
		}
	})

	t.Run("EmptyStringTreatedAsUnextracted", func(t *testing.T) {
		docs := []types.SourceDocument{
			{Name: "blank.txt", Type: types.DocumentTypeOther, ExtractedText: strPtr("")},
		}
		if got := RenderDocumentsContext(docs); !strings.Contains(got, "[No text extracted]") {
			t.Errorf("Expected placeholder for empty extraction, got %q", got)
		}
	})
}

func TestRenderVerificationContext(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		if got := RenderVerificationContext(nil); got != "No original documents available" {
			t.Errorf("Expected empty-set sentinel, got %q", got)
		}
	})

	t.Run("TypeUppercased", func(t *testing.T) {
		docs := []types.SourceDocument{
			{Name: "resume.pdf", Type: types.DocumentTypeResume, ExtractedText: strPtr("worked at Initech")},
		}
		got := RenderVerificationContext(docs)
		if !strings.HasPrefix(got, "[RESUME: resume.pdf]\nworked at Initech") {
			t.Errorf("Unexpected verification block %q", got)
		}
	})
}

func TestRenderProfileContext(t *testing.T) {
	t.Run("NilProfile", func(t *testing.T) {
		got := RenderProfileContext(nil)
		expected := "Name: User\nEmail: \nPhone: \nLocation: \nHeadline: "
		if got != expected {
			t.Errorf("RenderProfileContext(nil) = %q, expected %q", got, expected)
		}
	})

	t.Run("FullProfile", func(t *testing.T) {
		got := RenderProfileContext(&types.Profile{
			FullName: "Jan Kowalski",
			Email:    "jan@example.com",
			Phone:    "+48 123 456 789",
			Location: "Warsaw",
			Headline: "Backend Engineer",
		})
		for _, line := range []string{
			"Name: Jan Kowalski",
			"Email: jan@example.com",
			"Phone: +48 123 456 789",
			"Location: Warsaw",
			"Headline: Backend Engineer",
		} {
			if !strings.Contains(got, line) {
				t.Errorf("Missing %q in %q", line, got)
			}
		}
	})

	t.Run("EmptyNameFallsBackToUser", func(t *testing.T) {
		got := RenderProfileContext(&types.Profile{Email: "jan@example.com"})
		if !strings.Contains(got, "Name: User") {
			t.Errorf("Expected default name, got %q", got)
		}
	})
}
