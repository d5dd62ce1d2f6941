package rag

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docuchat/docuchat/internal/docsession"
	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/llm"
	"github.com/docuchat/docuchat/internal/models"
	"github.com/docuchat/docuchat/internal/session"
	"github.com/docuchat/docuchat/internal/vectorstore"
	"github.com/docuchat/docuchat/pkg/chunker"
	"github.com/docuchat/docuchat/pkg/textextract"
)

// Extractor turns raw PDF bytes into plain text; pkg/textextract in
// production.
type Extractor interface {
	Extract(data io.ReaderAt, size int64) (*textextract.ExtractedText, error)
}

type pdfExtractor struct{}

func (pdfExtractor) Extract(data io.ReaderAt, size int64) (*textextract.ExtractedText, error) {
	return textextract.Extract(data, size)
}

// Service glues extraction, chunking, embedding, vector storage, and
// conversation sessions into the two core operations: ingest and ask.
type Service interface {
	Ingest(ctx context.Context, uid string, data []byte, filename string) (*models.PDFSession, error)
	Ask(ctx context.Context, uid string, fileID uuid.UUID, question string, seed []session.Turn) (string, []session.Turn, error)
	ListSessions(ctx context.Context, uid string) ([]models.PDFSession, error)
	Purge(ctx context.Context, uid string, fileID uuid.UUID) error
}

type Options struct {
	Chunk           chunker.Options
	TopK            int
	SessionCapacity int
	ChatProvider    string
	ChatModel       string
	Extractor       Extractor // defaults to the PDF extractor
}

type service struct {
	extractor Extractor
	store     vectorstore.VectorStore
	embedder  *embedding.Service
	docs      docsession.Store
	sessions  *session.Manager
	chunkOpts chunker.Options
}

func NewService(store vectorstore.VectorStore, embedder *embedding.Service, docs docsession.Store, gw llm.Gateway, opts Options) Service {
	if opts.Chunk.ChunkSize == 0 {
		opts.Chunk = chunker.DefaultOptions()
	}
	if opts.Extractor == nil {
		opts.Extractor = pdfExtractor{}
	}

	generator := NewGenerator(gw, opts.ChatProvider, opts.ChatModel)

	newRetriever := func(uid string, fileID uuid.UUID) session.Retriever {
		return NewRetriever(store, embedder, vectorstore.Filter{UID: uid, FileID: fileID}, opts.TopK)
	}

	return &service{
		extractor: opts.Extractor,
		store:     store,
		embedder:  embedder,
		docs:      docs,
		sessions:  session.NewManager(opts.SessionCapacity, newRetriever, generator),
		chunkOpts: opts.Chunk,
	}
}

// Ingest runs in two phases. Phase one — extract, chunk, and embed —
// happens entirely in memory; nothing is written until every chunk has
// an embedding. Phase two writes the vector batch and then the session
// record, so a failure anywhere leaves no queryable trace of the file id.
func (s *service) Ingest(ctx context.Context, uid string, data []byte, filename string) (*models.PDFSession, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are accepted", ErrInvalidFile)
	}

	extracted, err := s.extractor.Extract(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	chunks := chunker.Split(extracted.Content, s.chunkOpts)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document produced no chunks", ErrExtraction)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", ErrEmbedding, len(embeddings), len(chunks))
	}

	fileID := uuid.New()

	records := make([]vectorstore.Chunk, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Chunk{
			ID:         uuid.New(),
			UID:        uid,
			FileID:     fileID,
			ChunkIndex: c.Index,
			Content:    c.Content,
			Source:     fmt.Sprintf("file_%s_chunk_%d", fileID, c.Index),
			Embedding:  embeddings[i],
		}
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	sess, err := s.docs.Create(ctx, models.PDFSession{
		FileID:    fileID,
		Filename:  filename,
		UID:       uid,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// The vectors are already written; remove them so the failed
		// ingest leaves nothing queryable under this file id.
		if delErr := s.store.DeleteDocument(ctx, vectorstore.Filter{UID: uid, FileID: fileID}); delErr != nil {
			slog.Error("rollback of orphaned vectors failed", "uid", uid, "file_id", fileID, "error", delErr)
		}
		return nil, fmt.Errorf("record pdf session: %w", err)
	}

	slog.Info("document ingested",
		"uid", uid,
		"file_id", fileID,
		"pages", extracted.Pages,
		"chunks", len(chunks),
	)
	return &sess, nil
}

// Ask answers a question against a previously ingested document. The
// document-session check is the authorisation gate and always runs
// before the conversation session is touched.
func (s *service) Ask(ctx context.Context, uid string, fileID uuid.UUID, question string, seed []session.Turn) (string, []session.Turn, error) {
	ok, err := s.docs.Exists(ctx, uid, fileID)
	if err != nil {
		return "", nil, fmt.Errorf("check pdf session: %w", err)
	}
	if !ok {
		return "", nil, fmt.Errorf("%w: file %s", ErrNotFound, fileID)
	}

	sess := s.sessions.GetOrCreate(uid, fileID, seed)
	return sess.Ask(ctx, question)
}

func (s *service) ListSessions(ctx context.Context, uid string) ([]models.PDFSession, error) {
	return s.docs.ListByUser(ctx, uid)
}

// Purge removes every trace of a document: its vectors, its session
// record, and any live conversation session.
func (s *service) Purge(ctx context.Context, uid string, fileID uuid.UUID) error {
	if err := s.store.DeleteDocument(ctx, vectorstore.Filter{UID: uid, FileID: fileID}); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	if err := s.docs.Delete(ctx, uid, fileID); err != nil {
		return fmt.Errorf("delete pdf session: %w", err)
	}
	s.sessions.Remove(uid, fileID)

	slog.Info("document purged", "uid", uid, "file_id", fileID)
	return nil
}
