package models

import (
	"time"

	"github.com/google/uuid"
)

// PDFSession records that a user ingested a document. Its existence for a
// (uid, file_id) pair is what authorises chat access to that document.
type PDFSession struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FileID    uuid.UUID `json:"file_id" db:"file_id"`
	Filename  string    `json:"filename" db:"filename"`
	UID       string    `json:"uid" db:"uid"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
