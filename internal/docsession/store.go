package docsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuchat/docuchat/internal/cache"
	"github.com/docuchat/docuchat/internal/models"
)

// Store persists PDFSession records. Records are created once at
// successful ingestion and never mutated.
type Store interface {
	Create(ctx context.Context, s models.PDFSession) (models.PDFSession, error)
	ListByUser(ctx context.Context, uid string) ([]models.PDFSession, error)
	Exists(ctx context.Context, uid string, fileID uuid.UUID) (bool, error)
	Delete(ctx context.Context, uid string, fileID uuid.UUID) error
}

const existsTTL = 10 * time.Minute

type PGStore struct {
	db    *pgxpool.Pool
	cache *cache.Cache // optional; caches positive Exists lookups
}

func NewPGStore(db *pgxpool.Pool, c *cache.Cache) *PGStore {
	return &PGStore{db: db, cache: c}
}

func (s *PGStore) Create(ctx context.Context, sess models.PDFSession) (models.PDFSession, error) {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO pdf_sessions (id, file_id, filename, uid, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		sess.ID, sess.FileID, sess.Filename, sess.UID, sess.CreatedAt,
	)
	if err != nil {
		return models.PDFSession{}, fmt.Errorf("insert pdf session: %w", err)
	}
	return sess, nil
}

func (s *PGStore) ListByUser(ctx context.Context, uid string) ([]models.PDFSession, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, file_id, filename, uid, created_at
		 FROM pdf_sessions WHERE uid = $1 ORDER BY created_at DESC`,
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("list pdf sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.PDFSession
	for rows.Next() {
		var sess models.PDFSession
		if err := rows.Scan(&sess.ID, &sess.FileID, &sess.Filename, &sess.UID, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pdf session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *PGStore) Exists(ctx context.Context, uid string, fileID uuid.UUID) (bool, error) {
	key := existsKey(uid, fileID)

	if s.cache != nil {
		var ok bool
		if err := s.cache.Get(ctx, key, &ok); err == nil && ok {
			return true, nil
		}
	}

	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pdf_sessions WHERE uid = $1 AND file_id = $2)",
		uid, fileID,
	).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("check pdf session: %w", err)
	}

	if exists && s.cache != nil {
		_ = s.cache.Set(ctx, key, true, existsTTL)
	}
	return exists, nil
}

func (s *PGStore) Delete(ctx context.Context, uid string, fileID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM pdf_sessions WHERE uid = $1 AND file_id = $2",
		uid, fileID,
	)
	if err != nil {
		return fmt.Errorf("delete pdf session: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, existsKey(uid, fileID))
	}
	return nil
}

func existsKey(uid string, fileID uuid.UUID) string {
	return fmt.Sprintf("pdfsession:%s:%s", uid, fileID)
}
