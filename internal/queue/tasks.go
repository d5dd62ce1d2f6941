package queue

const (
	TypeDocumentPurge = "document:purge"
)

type DocumentPurgePayload struct {
	UID    string `json:"uid"`
	FileID string `json:"file_id"`
}
