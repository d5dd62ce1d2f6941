package rag

import "errors"

// Error kinds for the ingestion and chat flows. Callers branch with
// errors.Is to map them onto transport-level responses: invalid file and
// extraction failures are client errors, embedding failures are upstream
// provider failures, a missing document session is a not-found, and
// generation failures are server errors.
var (
	ErrInvalidFile = errors.New("invalid file type")
	ErrExtraction  = errors.New("text extraction failed")
	ErrEmbedding   = errors.New("embedding failed")
	ErrGeneration  = errors.New("answer generation failed")
	ErrNotFound    = errors.New("document session not found")
)
