package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"tailor/internal/extract"
	"tailor/internal/observability"
	"tailor/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// parseDocumentType maps a form value to a document type, defaulting to
// "other" for anything unrecognized.
func parseDocumentType(value string) types.DocumentType {
	switch types.DocumentType(value) {
	case types.DocumentTypeResume, types.DocumentTypeExperience, types.DocumentTypeSkills:
		return types.DocumentType(value)
	default:
		return types.DocumentTypeOther
	}
}

// createUploadDocumentHandler accepts a multipart document upload, stores
// the raw bytes, and records the document row. Text extraction runs later
// via the process endpoint.
func (s *Server) createUploadDocumentHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("tailor.api")
		ctx, span := tracer.Start(ctx, "api.documents.upload")
		defer span.End()

		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}

		if s.MaxUploadSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadSize)
		}
		if err := r.ParseMultipartForm(s.MaxUploadSize); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid upload", "multipart form with a 'file' field is required", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Missing file", "'file' field is required", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Warn("Failed to close uploaded file", "error", err)
			}
		}()

		key, size, err := s.Deps.Objects.Save(ctx, userID, header.Filename, file)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, s.Logger, "Failed to store document", err)
			return
		}

		doc := types.SourceDocument{
			ID:         uuid.NewString(),
			UserID:     userID,
			Name:       header.Filename,
			Type:       parseDocumentType(r.FormValue("type")),
			StorageKey: key,
			SizeBytes:  size,
			CreatedAt:  time.Now().UTC(),
		}

		if err := s.Deps.Store.Documents.Create(ctx, doc); err != nil {
			// The object is orphaned without its row; remove it.
			if delErr := s.Deps.Objects.Delete(ctx, key); delErr != nil {
				s.Logger.Warn("Failed to clean up stored object after insert failure",
					"storage_key", key, "error", delErr)
			}
			span.RecordError(err)
			writeAppError(w, s.Logger, "Failed to record document", err)
			return
		}

		span.SetAttributes(
			attribute.String("document.type", string(doc.Type)),
			attribute.Int64("document.size_bytes", size),
		)
		s.Logger.Info("Document uploaded",
			"document_id", doc.ID,
			"name", doc.Name,
			"type", string(doc.Type),
			"size_bytes", size)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createListDocumentsHandler lists the caller's uploaded documents
func (s *Server) createListDocumentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}

		docs, err := s.Deps.Store.Documents.ListByUser(r.Context(), userID)
		if err != nil {
			writeAppError(w, s.Logger, "Failed to list documents", err)
			return
		}
		if docs == nil {
			docs = []types.SourceDocument{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(docs); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createDeleteDocumentHandler removes a document row and its stored bytes
func (s *Server) createDeleteDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}
		id := r.PathValue("id")

		doc, err := s.Deps.Store.Documents.GetByID(ctx, userID, id)
		if err != nil {
			writeAppError(w, s.Logger, "Failed to load document", err)
			return
		}

		if err := s.Deps.Store.Documents.Delete(ctx, userID, id); err != nil {
			writeAppError(w, s.Logger, "Failed to delete document", err)
			return
		}

		// Row is gone; a leftover object is harmless, so log and move on.
		if err := s.Deps.Objects.Delete(ctx, doc.StorageKey); err != nil {
			s.Logger.Warn("Failed to delete stored object",
				"document_id", id, "storage_key", doc.StorageKey, "error", err)
		}

		s.Logger.Info("Document deleted", "document_id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// createProcessDocumentHandler runs text extraction for one document and
// persists the result
func (s *Server) createProcessDocumentHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("tailor.api")
		ctx, span := tracer.Start(ctx, "api.documents.process")
		defer span.End()

		userID, ok := s.userIDFromRequest(w, r)
		if !ok {
			return
		}
		id := r.PathValue("id")
		metrics := om.GetMetrics()

		doc, err := s.Deps.Store.Documents.GetByID(ctx, userID, id)
		if err != nil {
			span.RecordError(err)
			writeAppError(w, s.Logger, "Failed to load document", err)
			return
		}

		reader, err := s.Deps.Objects.Open(ctx, doc.StorageKey)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "document_processed", false, om)
			writeAppError(w, s.Logger, "Failed to open stored document", err)
			return
		}
		data, err := io.ReadAll(reader)
		if closeErr := reader.Close(); closeErr != nil {
			s.Logger.Warn("Failed to close stored object", "error", closeErr)
		}
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "document_processed", false, om)
			writeAppError(w, s.Logger, "Failed to read stored document", err)
			return
		}

		text, err := extract.Text(doc.Name, data)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "extraction"))
			metrics.RecordBusinessMetric(ctx, "document_processed", false, om)
			writeAppError(w, s.Logger, "Failed to extract document text", err)
			return
		}

		if err := s.Deps.Store.Documents.UpdateExtractedText(ctx, userID, id, text); err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "document_processed", false, om)
			writeAppError(w, s.Logger, "Failed to save extracted text", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "document_processed", true, om,
			attribute.Int("text_length", len(text)))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("text_length", len(text)),
		)
		s.Logger.Info("Document processed", "document_id", id, "text_length", len(text))

		doc.ExtractedText = &text
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}
