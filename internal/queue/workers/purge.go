package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/docuchat/docuchat/internal/queue"
	"github.com/docuchat/docuchat/internal/rag"
)

// PurgeWorker deletes a document's vectors, its session record, and any
// live conversation session. Purging is idempotent, so asynq retries of
// a half-finished run are safe.
type PurgeWorker struct {
	svc rag.Service
}

func NewPurgeWorker(svc rag.Service) *PurgeWorker {
	return &PurgeWorker{svc: svc}
}

func (w *PurgeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	fileID, err := uuid.Parse(payload.FileID)
	if err != nil {
		return fmt.Errorf("parse file ID: %w", err)
	}

	slog.Info("purging document", "uid", payload.UID, "file_id", fileID)

	if err := w.svc.Purge(ctx, payload.UID, fileID); err != nil {
		return fmt.Errorf("purge document: %w", err)
	}

	return nil
}
