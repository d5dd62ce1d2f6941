package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/internal/auth"
	"github.com/docuchat/docuchat/internal/models"
	"github.com/docuchat/docuchat/internal/queue"
	"github.com/docuchat/docuchat/internal/rag"
	"github.com/docuchat/docuchat/internal/session"
)

type fakeRAGService struct {
	ingestErr error
	askErr    error
	lastUID   string
	fileID    uuid.UUID
}

func (f *fakeRAGService) Ingest(_ context.Context, uid string, _ []byte, filename string) (*models.PDFSession, error) {
	f.lastUID = uid
	if f.ingestErr != nil {
		return nil, f.ingestErr
	}
	return &models.PDFSession{FileID: f.fileID, Filename: filename, UID: uid}, nil
}

func (f *fakeRAGService) Ask(_ context.Context, uid string, fileID uuid.UUID, question string, seed []session.Turn) (string, []session.Turn, error) {
	f.lastUID = uid
	if f.askErr != nil {
		return "", nil, f.askErr
	}
	history := append(append([]session.Turn{}, seed...), session.Turn{Question: question, Answer: "an answer"})
	return "an answer", history, nil
}

func (f *fakeRAGService) ListSessions(_ context.Context, uid string) ([]models.PDFSession, error) {
	f.lastUID = uid
	return []models.PDFSession{{FileID: f.fileID, Filename: "doc.pdf", UID: uid}}, nil
}

func (f *fakeRAGService) Purge(context.Context, string, uuid.UUID) error {
	return nil
}

type fakeEnqueuer struct {
	enqueued []queue.DocumentPurgePayload
	err      error
}

func (f *fakeEnqueuer) EnqueueDocumentPurge(p queue.DocumentPurgePayload) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, p)
	return nil
}

func newTestRouter(svc rag.Service, q PurgeEnqueuer) http.Handler {
	h := NewRAGHandler(svc, q)
	r := chi.NewRouter()
	r.Route("/rag", func(r chi.Router) {
		r.Post("/upload", h.Upload)
		r.Post("/chat/{file_id}", h.Chat)
		r.Get("/sessions", h.ListSessions)
		r.Delete("/sessions/{file_id}", h.DeleteSession)
	})
	return r
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func authed(req *http.Request, uid string) *http.Request {
	return req.WithContext(auth.WithUID(req.Context(), uid))
}

func TestUpload_Created(t *testing.T) {
	svc := &fakeRAGService{fileID: uuid.New()}
	router := newTestRouter(svc, &fakeEnqueuer{})

	body, contentType := multipartBody(t, "report.pdf", "%PDF-1.4 fake")
	req := httptest.NewRequest(http.MethodPost, "/rag/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, "u1"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", svc.lastUID)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, svc.fileID.String(), resp["file_id"])
	assert.Equal(t, "report.pdf", resp["filename"])
}

func TestUpload_MissingFile(t *testing.T) {
	router := newTestRouter(&fakeRAGService{}, &fakeEnqueuer{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/rag/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, "u1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid file", fmt.Errorf("%w: only PDF", rag.ErrInvalidFile), http.StatusBadRequest},
		{"extraction", fmt.Errorf("%w: no text", rag.ErrExtraction), http.StatusBadRequest},
		{"embedding", fmt.Errorf("%w: provider down", rag.ErrEmbedding), http.StatusBadGateway},
		{"other", fmt.Errorf("database on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeRAGService{ingestErr: tc.err}, &fakeEnqueuer{})

			body, contentType := multipartBody(t, "doc.pdf", "data")
			req := httptest.NewRequest(http.MethodPost, "/rag/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, authed(req, "u1"))

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestChat_OK(t *testing.T) {
	svc := &fakeRAGService{fileID: uuid.New()}
	router := newTestRouter(svc, &fakeEnqueuer{})

	payload := `{"question": "What is X?", "chat_history": [{"question": "earlier", "answer": "reply"}]}`
	req := httptest.NewRequest(http.MethodPost, "/rag/chat/"+svc.fileID.String(), strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, "u1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Answer      string         `json:"answer"`
		ChatHistory []session.Turn `json:"chat_history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "an answer", resp.Answer)
	require.Len(t, resp.ChatHistory, 2)
	assert.Equal(t, "earlier", resp.ChatHistory[0].Question)
}

func TestChat_InvalidFileID(t *testing.T) {
	router := newTestRouter(&fakeRAGService{}, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodPost, "/rag/chat/not-a-uuid", strings.NewReader(`{"question": "hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, "u1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_EmptyQuestion(t *testing.T) {
	router := newTestRouter(&fakeRAGService{}, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodPost, "/rag/chat/"+uuid.NewString(), strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, "u1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_NotFound(t *testing.T) {
	svc := &fakeRAGService{askErr: fmt.Errorf("%w: file gone", rag.ErrNotFound)}
	router := newTestRouter(svc, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodPost, "/rag/chat/"+uuid.NewString(), strings.NewReader(`{"question": "hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, "u1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessions_OK(t *testing.T) {
	svc := &fakeRAGService{fileID: uuid.New()}
	router := newTestRouter(svc, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodGet, "/rag/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, "u7"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u7", svc.lastUID)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp["count"])
}

func TestDeleteSession_Accepted(t *testing.T) {
	q := &fakeEnqueuer{}
	router := newTestRouter(&fakeRAGService{}, q)

	fileID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/rag/sessions/"+fileID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, "u1"))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, q.enqueued, 1)
	assert.Equal(t, "u1", q.enqueued[0].UID)
	assert.Equal(t, fileID.String(), q.enqueued[0].FileID)
}

func TestDeleteSession_EnqueueFailure(t *testing.T) {
	q := &fakeEnqueuer{err: fmt.Errorf("redis unreachable")}
	router := newTestRouter(&fakeRAGService{}, q)

	req := httptest.NewRequest(http.MethodDelete, "/rag/sessions/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, "u1"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
