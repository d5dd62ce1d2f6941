package docsession

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/docuchat/docuchat/internal/models"
)

// MemoryStore keeps session records in process memory; used when no
// database is configured, and by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions []models.PDFSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, sess models.PDFSession) (models.PDFSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	s.sessions = append(s.sessions, sess)
	return sess, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, uid string) ([]models.PDFSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PDFSession
	for _, sess := range s.sessions {
		if sess.UID == uid {
			out = append(out, sess)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Exists(_ context.Context, uid string, fileID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.UID == uid && sess.FileID == fileID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Delete(_ context.Context, uid string, fileID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	for _, sess := range s.sessions {
		if sess.UID == uid && sess.FileID == fileID {
			continue
		}
		kept = append(kept, sess)
	}
	s.sessions = kept
	return nil
}
