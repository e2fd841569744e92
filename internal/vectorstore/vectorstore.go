package vectorstore

import (
	"context"
	"errors"
	"time"

	"docs-rag/internal/models"
)

var (
	// ErrNotFound is returned by Open when no persisted index exists.
	ErrNotFound = errors.New("vector index not found")

	// ErrModelMismatch is returned by Open when the persisted index was built
	// with a different embedding model than the one configured now.
	ErrModelMismatch = errors.New("vector index built with a different embedding model")
)

// Metadata describes a persisted index. The embedding model identifier is
// validated on Open: querying an index with a different model than the one it
// was built with silently returns garbage, so the mismatch must fail loudly.
type Metadata struct {
	EmbeddingModel string    `yaml:"embedding_model"`
	Sections       int       `yaml:"sections"`
	CreatedAt      time.Time `yaml:"created_at"`
}

// Hit is one similarity-search result. The stored embedding is returned so
// callers can re-rank without another round trip to the embedding service.
type Hit struct {
	Section    models.Section
	Embedding  []float32
	Similarity float32
}

// Store is a persisted vector index over document sections. A store is either
// created fresh (Create/Add/Finalize, build mode) or attached to (Open, load
// mode), never both in one run. Open and Search must not mutate the persisted
// state.
type Store interface {
	// Create starts an empty store, destroying any prior index at the same
	// location.
	Create(ctx context.Context) error

	// Add stores sections with their embeddings. Only valid after Create.
	Add(ctx context.Context, sections []models.Section, vectors [][]float32) error

	// Finalize persists meta and marks the build complete; an index without
	// it is treated as absent by Open.
	Finalize(ctx context.Context, meta Metadata) error

	// Open attaches to a previously persisted store. ErrNotFound if none
	// exists, ErrModelMismatch if it was built with a model other than
	// embeddingModel.
	Open(ctx context.Context, embeddingModel string) (Metadata, error)

	// Search returns up to k hits ordered by decreasing similarity to vector.
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)

	// Count reports the number of stored sections.
	Count(ctx context.Context) (int, error)
}
