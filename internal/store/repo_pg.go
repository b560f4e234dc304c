package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tailor/internal/types"
)

// PGDocumentRepo implements DocumentRepo using Postgres.
type PGDocumentRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, name, type, extracted_text, storage_key, size_bytes, created_at`

// Create inserts a new document row.
func (r *PGDocumentRepo) Create(ctx context.Context, doc types.SourceDocument) error {
	const query = `
INSERT INTO documents (id, user_id, name, type, extracted_text, storage_key, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	var extractedText sql.NullString
	if doc.ExtractedText != nil {
		extractedText = sql.NullString{String: *doc.ExtractedText, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Name,
		string(doc.Type),
		extractedText,
		doc.StorageKey,
		doc.SizeBytes,
		doc.CreatedAt,
	)
	return err
}

// GetByID returns one of the user's documents.
func (r *PGDocumentRepo) GetByID(ctx context.Context, userID, id string) (types.SourceDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND user_id = $2 LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, id, userID))
}

// ListByUser returns all of the user's documents, oldest first.
func (r *PGDocumentRepo) ListByUser(ctx context.Context, userID string) ([]types.SourceDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []types.SourceDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateExtractedText replaces the document's extracted text.
// Reprocessing overwrites any earlier extraction result.
func (r *PGDocumentRepo) UpdateExtractedText(ctx context.Context, userID, id, text string) error {
	const query = `UPDATE documents SET extracted_text = $1 WHERE id = $2 AND user_id = $3`
	res, err := r.DB.ExecContext(ctx, query, text, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes the document row.
func (r *PGDocumentRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM documents WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// PGJobPostingRepo implements JobPostingRepo using Postgres.
type PGJobPostingRepo struct {
	DB *sql.DB
}

// Create inserts a new job posting row.
func (r *PGJobPostingRepo) Create(ctx context.Context, posting types.JobPosting) error {
	const query = `
INSERT INTO job_postings (id, user_id, description, title, company, keywords, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var company sql.NullString
	if posting.Company != "" {
		company = sql.NullString{String: posting.Company, Valid: true}
	}
	keywords, err := marshalJSONB(posting.Keywords)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		posting.ID,
		posting.UserID,
		posting.Description,
		posting.Title,
		company,
		keywords,
		posting.CreatedAt,
	)
	return err
}

// GetByID returns one of the user's job postings.
func (r *PGJobPostingRepo) GetByID(ctx context.Context, userID, id string) (types.JobPosting, error) {
	const query = `
SELECT id, user_id, description, title, company, keywords, created_at
FROM job_postings
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var posting types.JobPosting
	var company sql.NullString
	var keywords []byte
	err := r.DB.QueryRowContext(ctx, query, id, userID).Scan(
		&posting.ID,
		&posting.UserID,
		&posting.Description,
		&posting.Title,
		&company,
		&keywords,
		&posting.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.JobPosting{}, ErrNotFound
		}
		return types.JobPosting{}, err
	}
	if company.Valid {
		posting.Company = company.String
	}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &posting.Keywords); err != nil {
			return types.JobPosting{}, fmt.Errorf("decode keywords: %w", err)
		}
	}
	return posting, nil
}

// PGResumeRepo implements ResumeRepo using Postgres.
type PGResumeRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, job_posting_id, title, content, ats_score, style, metadata, created_at, updated_at`

// Create inserts a new generated resume row.
func (r *PGResumeRepo) Create(ctx context.Context, resume types.GeneratedResume) error {
	const query = `
INSERT INTO generated_resumes (id, user_id, job_posting_id, title, content, ats_score, style, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	var jobPostingID sql.NullString
	if resume.JobPostingID != nil {
		jobPostingID = sql.NullString{String: *resume.JobPostingID, Valid: true}
	}
	metadata, err := marshalJSONB(resume.Metadata)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		jobPostingID,
		resume.Title,
		resume.Content,
		resume.ATSScore,
		resume.Style,
		metadata,
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	return err
}

// GetByID returns one of the user's resumes.
func (r *PGResumeRepo) GetByID(ctx context.Context, userID, id string) (types.GeneratedResume, error) {
	query := `SELECT ` + resumeColumns + ` FROM generated_resumes WHERE id = $1 AND user_id = $2 LIMIT 1`
	return scanResume(r.DB.QueryRowContext(ctx, query, id, userID))
}

// ListByUser returns all of the user's resumes, newest first.
func (r *PGResumeRepo) ListByUser(ctx context.Context, userID string) ([]types.GeneratedResume, error) {
	query := `SELECT ` + resumeColumns + ` FROM generated_resumes WHERE user_id = $1 ORDER BY created_at DESC, id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resumes []types.GeneratedResume
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}
	return resumes, rows.Err()
}

// UpdateContentAndScore applies a user-approved reformat: new content,
// new score, bumped updated_at. The only mutation resumes support.
func (r *PGResumeRepo) UpdateContentAndScore(ctx context.Context, userID, id, content string, atsScore int) error {
	const query = `
UPDATE generated_resumes SET content = $1, ats_score = $2, updated_at = now()
WHERE id = $3 AND user_id = $4`
	res, err := r.DB.ExecContext(ctx, query, content, atsScore, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes the resume row. The job posting stays.
func (r *PGResumeRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM generated_resumes WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (types.SourceDocument, error) {
	var doc types.SourceDocument
	var docType string
	var extractedText sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Name,
		&docType,
		&extractedText,
		&doc.StorageKey,
		&doc.SizeBytes,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.SourceDocument{}, ErrNotFound
		}
		return types.SourceDocument{}, err
	}
	doc.Type = types.DocumentType(docType)
	if extractedText.Valid {
		text := extractedText.String
		doc.ExtractedText = &text
	}
	return doc, nil
}

func scanResume(row rowScanner) (types.GeneratedResume, error) {
	var resume types.GeneratedResume
	var jobPostingID sql.NullString
	var metadata []byte
	err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&jobPostingID,
		&resume.Title,
		&resume.Content,
		&resume.ATSScore,
		&resume.Style,
		&metadata,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.GeneratedResume{}, ErrNotFound
		}
		return types.GeneratedResume{}, err
	}
	if jobPostingID.Valid {
		id := jobPostingID.String
		resume.JobPostingID = &id
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &resume.Metadata); err != nil {
			return types.GeneratedResume{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return resume, nil
}

func marshalJSONB(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	return payload, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
