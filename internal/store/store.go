package store

import (
	"context"
	"database/sql"
	"errors"

	"tailor/internal/types"
)

// ErrNotFound is returned when a row does not exist or belongs to a
// different user.
var ErrNotFound = errors.New("not found")

// DocumentRepo defines persistence operations for source documents.
// Every operation is scoped to the owning user.
type DocumentRepo interface {
	Create(ctx context.Context, doc types.SourceDocument) error
	GetByID(ctx context.Context, userID, id string) (types.SourceDocument, error)
	ListByUser(ctx context.Context, userID string) ([]types.SourceDocument, error)
	UpdateExtractedText(ctx context.Context, userID, id, text string) error
	Delete(ctx context.Context, userID, id string) error
}

// JobPostingRepo defines persistence operations for job postings.
// Postings are immutable after insert.
type JobPostingRepo interface {
	Create(ctx context.Context, posting types.JobPosting) error
	GetByID(ctx context.Context, userID, id string) (types.JobPosting, error)
}

// ResumeRepo defines persistence operations for generated resumes.
type ResumeRepo interface {
	Create(ctx context.Context, resume types.GeneratedResume) error
	GetByID(ctx context.Context, userID, id string) (types.GeneratedResume, error)
	ListByUser(ctx context.Context, userID string) ([]types.GeneratedResume, error)
	UpdateContentAndScore(ctx context.Context, userID, id, content string, atsScore int) error
	Delete(ctx context.Context, userID, id string) error
}

// Store bundles the repositories over one backing database.
type Store struct {
	Documents   DocumentRepo
	JobPostings JobPostingRepo
	Resumes     ResumeRepo

	db *sql.DB
}

// NewPGStore builds a Store backed by Postgres repositories sharing db.
func NewPGStore(db *sql.DB) *Store {
	return &Store{
		Documents:   &PGDocumentRepo{DB: db},
		JobPostings: &PGJobPostingRepo{DB: db},
		Resumes:     &PGResumeRepo{DB: db},
		db:          db,
	}
}

// NewMemoryStore builds a Store backed by in-memory repositories. Used
// by tests and the CLI one-shot pipeline, which has no database.
func NewMemoryStore() *Store {
	return &Store{
		Documents:   NewMemoryDocumentRepo(),
		JobPostings: NewMemoryJobPostingRepo(),
		Resumes:     NewMemoryResumeRepo(),
	}
}

// Ping verifies database connectivity. Always nil for memory stores.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

// Close releases the underlying database handle, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
