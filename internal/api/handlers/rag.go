package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/docuchat/docuchat/internal/auth"
	"github.com/docuchat/docuchat/internal/queue"
	"github.com/docuchat/docuchat/internal/rag"
	"github.com/docuchat/docuchat/internal/session"
)

// PurgeEnqueuer is the slice of the queue client the handler needs.
type PurgeEnqueuer interface {
	EnqueueDocumentPurge(payload queue.DocumentPurgePayload) error
}

type RAGHandler struct {
	svc   rag.Service
	queue PurgeEnqueuer
}

func NewRAGHandler(svc rag.Service, q PurgeEnqueuer) *RAGHandler {
	return &RAGHandler{svc: svc, queue: q}
}

func (h *RAGHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read file"})
		return
	}

	sess, err := h.svc.Ingest(r.Context(), uid, data, header.Filename)
	if err != nil {
		writeRAGError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "PDF processed successfully",
		"file_id":  sess.FileID,
		"filename": sess.Filename,
	})
}

type chatRequest struct {
	Question    string         `json:"question"`
	ChatHistory []session.Turn `json:"chat_history,omitempty"`
}

func (h *RAGHandler) Chat(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())

	fileID, err := uuid.Parse(chi.URLParam(r, "file_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid file ID"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question required"})
		return
	}

	answer, history, err := h.svc.Ask(r.Context(), uid, fileID, req.Question, req.ChatHistory)
	if err != nil {
		writeRAGError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"answer":       answer,
		"chat_history": history,
	})
}

func (h *RAGHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())

	sessions, err := h.svc.ListSessions(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions, "count": len(sessions)})
}

// DeleteSession evicts the live conversation immediately and hands the
// storage cleanup to the background worker.
func (h *RAGHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())

	fileID, err := uuid.Parse(chi.URLParam(r, "file_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid file ID"})
		return
	}

	if err := h.queue.EnqueueDocumentPurge(queue.DocumentPurgePayload{
		UID:    uid,
		FileID: fileID.String(),
	}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to schedule deletion"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "deletion scheduled"})
}

func writeRAGError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rag.ErrInvalidFile), errors.Is(err, rag.ErrExtraction):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, rag.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, rag.ErrEmbedding):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
