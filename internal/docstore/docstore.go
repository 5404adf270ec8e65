package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNoDocument is returned by Get and by Update on a missing id.
	ErrNoDocument = errors.New("document not found")
)

// Document is one record in a collection, keyed by ID. Fields carry
// arbitrary JSON-compatible values.
type Document struct {
	ID     string
	Fields map[string]any
}

// Collection is one named bucket of documents.
// Update fails with ErrNoDocument when the id is absent; Set upserts;
// Add lets the store pick the id.
type Collection interface {
	Get(ctx context.Context, id string) (*Document, error)
	Set(ctx context.Context, id string, fields map[string]any) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Add(ctx context.Context, fields map[string]any) (string, error)
	Delete(ctx context.Context, id string) error
	QueryAll(ctx context.Context) ([]Document, error)
}

// Store hands out collections by path.
type Store interface {
	Collection(path string) Collection
}
