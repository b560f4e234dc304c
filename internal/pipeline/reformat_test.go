package pipeline

import (
	stderrors "errors"
	"testing"

	"tailor/internal/errors"
	"tailor/internal/types"
)

func gapReport(texts ...string) types.ComplianceReport {
	var report types.ComplianceReport
	for _, text := range texts {
		report.Claims = append(report.Claims, types.ComplianceClaim{
			Category: types.ClaimGap,
			Text:     text,
		})
	}
	return report
}

func assertFabricationError(t *testing.T, err error) *errors.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("Expected a fabrication error, got nil")
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("Expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeFabricationDetected {
		t.Fatalf("Expected code %s, got %s", errors.ErrCodeFabricationDetected, appErr.Code)
	}
	return appErr
}

func TestVerifyReformatGapClaims(t *testing.T) {
	corpus := "worked on backend services at Initech using Go and Postgres"

	t.Run("GapSubjectSurvivesOutput", func(t *testing.T) {
		report := gapReport("AWS Solutions Architect certification")
		content := "SUMMARY\nBackend engineer holding an AWS Solutions Architect certification."
		assertFabricationError(t, VerifyReformat(content, report, corpus))
	})

	t.Run("GapSubjectCaseInsensitive", func(t *testing.T) {
		report := gapReport("AWS Solutions Architect certification")
		content := "Holds an aws solutions architect CERTIFICATION."
		assertFabricationError(t, VerifyReformat(content, report, corpus))
	})

	t.Run("GapSubjectAbsent", func(t *testing.T) {
		report := gapReport("AWS Solutions Architect certification")
		content := "SUMMARY\nBackend engineer with Go and Postgres experience at Initech."
		if err := VerifyReformat(content, report, corpus); err != nil {
			t.Fatalf("Expected clean output to pass, got %v", err)
		}
	})

	t.Run("ParentheticalCutFromSubject", func(t *testing.T) {
		report := gapReport("Team leadership experience (5+ years required)")
		content := "Demonstrated team leadership experience across two squads."
		assertFabricationError(t, VerifyReformat(content, report, corpus))
	})

	t.Run("ShortSubjectsIgnored", func(t *testing.T) {
		report := gapReport("Go")
		content := "Go developer since 2015."
		if err := VerifyReformat(content, report, corpus); err != nil {
			t.Fatalf("Short gap subjects must not trigger, got %v", err)
		}
	})
}

func TestVerifyReformatCredentialLines(t *testing.T) {
	corpus := "resume: Initech backend work, CompTIA Security+ certified since 2021"

	t.Run("UnverifiedCredentialTerm", func(t *testing.T) {
		content := "CERTIFICATIONS\n- Certified Zowietech Practitioner"
		err := VerifyReformat(content, types.ComplianceReport{}, corpus)
		assertFabricationError(t, err)
	})

	t.Run("VerifiedCredentialPasses", func(t *testing.T) {
		content := "CERTIFICATIONS\n- CompTIA Security+ certified"
		if err := VerifyReformat(content, types.ComplianceReport{}, corpus); err != nil {
			t.Fatalf("Expected corpus-backed credential to pass, got %v", err)
		}
	})

	t.Run("SectionHeaderSkipped", func(t *testing.T) {
		// The header itself names no credential; only the lines under it
		// are checked.
		content := "AWS CERTIFICATION\n"
		if err := VerifyReformat(content, types.ComplianceReport{}, corpus); err != nil {
			t.Fatalf("All-caps section header must be skipped, got %v", err)
		}
	})

	t.Run("NonCredentialLinesUnchecked", func(t *testing.T) {
		content := "- Built Zowietech integrations for enterprise clients"
		if err := VerifyReformat(content, types.ComplianceReport{}, corpus); err != nil {
			t.Fatalf("Lines without credential keywords must be unchecked, got %v", err)
		}
	})

	t.Run("CredentialKeywordItselfNotFlagged", func(t *testing.T) {
		content := "- Certified in technologies named in my resume: CompTIA"
		if err := VerifyReformat(content, types.ComplianceReport{}, corpus); err != nil {
			t.Fatalf("Keyword token must not be treated as a credential name, got %v", err)
		}
	})
}
