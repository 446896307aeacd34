package vectorindex

import (
	"context"

	"ai-advisor-be/pkg/store"
)

// Index is the vector search capability consumed by the retrieval engine.
// Implementations own the storage details; the core only sees scored documents.
type Index interface {
	// Search returns the topK documents nearest to the query vector.
	Search(ctx context.Context, vector []float32, topK int) ([]store.Document, error)

	// Upsert inserts or replaces a document and its embedding.
	Upsert(ctx context.Context, id string, vector []float32, payload DocumentPayload) error
}

// DocumentPayload is the stored content alongside an embedding.
type DocumentPayload struct {
	Title          string
	Content        string
	Source         string
	Topic          string
	KnowledgeLevel string
}
