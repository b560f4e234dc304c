package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"tailor/internal/types"
)

// MemoryDocumentRepo stores documents in memory and is safe for
// concurrent use.
type MemoryDocumentRepo struct {
	mu   sync.RWMutex
	byID map[string]types.SourceDocument
}

// NewMemoryDocumentRepo constructs a MemoryDocumentRepo.
func NewMemoryDocumentRepo() *MemoryDocumentRepo {
	return &MemoryDocumentRepo{byID: make(map[string]types.SourceDocument)}
}

// Create stores the document.
func (r *MemoryDocumentRepo) Create(ctx context.Context, doc types.SourceDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[doc.ID] = doc
	return nil
}

// GetByID returns one of the user's documents.
func (r *MemoryDocumentRepo) GetByID(ctx context.Context, userID, id string) (types.SourceDocument, error) {
	if err := ctx.Err(); err != nil {
		return types.SourceDocument{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[id]
	if !ok || doc.UserID != userID {
		return types.SourceDocument{}, ErrNotFound
	}
	return doc, nil
}

// ListByUser returns all of the user's documents, oldest first.
func (r *MemoryDocumentRepo) ListByUser(ctx context.Context, userID string) ([]types.SourceDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var docs []types.SourceDocument
	for _, doc := range r.byID {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

// UpdateExtractedText replaces the document's extracted text.
func (r *MemoryDocumentRepo) UpdateExtractedText(ctx context.Context, userID, id, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byID[id]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	doc.ExtractedText = &text
	r.byID[id] = doc
	return nil
}

// Delete removes the document.
func (r *MemoryDocumentRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byID[id]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// MemoryJobPostingRepo stores job postings in memory.
type MemoryJobPostingRepo struct {
	mu   sync.RWMutex
	byID map[string]types.JobPosting
}

// NewMemoryJobPostingRepo constructs a MemoryJobPostingRepo.
func NewMemoryJobPostingRepo() *MemoryJobPostingRepo {
	return &MemoryJobPostingRepo{byID: make(map[string]types.JobPosting)}
}

// Create stores the posting.
func (r *MemoryJobPostingRepo) Create(ctx context.Context, posting types.JobPosting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[posting.ID] = posting
	return nil
}

// GetByID returns one of the user's postings.
func (r *MemoryJobPostingRepo) GetByID(ctx context.Context, userID, id string) (types.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return types.JobPosting{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	posting, ok := r.byID[id]
	if !ok || posting.UserID != userID {
		return types.JobPosting{}, ErrNotFound
	}
	return posting, nil
}

// MemoryResumeRepo stores generated resumes in memory.
type MemoryResumeRepo struct {
	mu   sync.RWMutex
	byID map[string]types.GeneratedResume
}

// NewMemoryResumeRepo constructs a MemoryResumeRepo.
func NewMemoryResumeRepo() *MemoryResumeRepo {
	return &MemoryResumeRepo{byID: make(map[string]types.GeneratedResume)}
}

// Create stores the resume.
func (r *MemoryResumeRepo) Create(ctx context.Context, resume types.GeneratedResume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[resume.ID] = resume
	return nil
}

// GetByID returns one of the user's resumes.
func (r *MemoryResumeRepo) GetByID(ctx context.Context, userID, id string) (types.GeneratedResume, error) {
	if err := ctx.Err(); err != nil {
		return types.GeneratedResume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.byID[id]
	if !ok || resume.UserID != userID {
		return types.GeneratedResume{}, ErrNotFound
	}
	return resume, nil
}

// ListByUser returns all of the user's resumes, newest first.
func (r *MemoryResumeRepo) ListByUser(ctx context.Context, userID string) ([]types.GeneratedResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var resumes []types.GeneratedResume
	for _, resume := range r.byID {
		if resume.UserID == userID {
			resumes = append(resumes, resume)
		}
	}
	sort.Slice(resumes, func(i, j int) bool {
		if resumes[i].CreatedAt.Equal(resumes[j].CreatedAt) {
			return resumes[i].ID < resumes[j].ID
		}
		return resumes[i].CreatedAt.After(resumes[j].CreatedAt)
	})
	return resumes, nil
}

// UpdateContentAndScore applies a user-approved reformat.
func (r *MemoryResumeRepo) UpdateContentAndScore(ctx context.Context, userID, id, content string, atsScore int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[id]
	if !ok || resume.UserID != userID {
		return ErrNotFound
	}
	resume.Content = content
	resume.ATSScore = atsScore
	resume.UpdatedAt = time.Now().UTC()
	r.byID[id] = resume
	return nil
}

// Delete removes the resume.
func (r *MemoryResumeRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[id]
	if !ok || resume.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
