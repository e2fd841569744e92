package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"docs-rag/internal/embedding"
	"docs-rag/internal/models"
	"docs-rag/internal/vectorstore"
)

// ErrEmptyCorpus is returned when a build is requested with no sections.
var ErrEmptyCorpus = errors.New("empty corpus: no sections to index")

const (
	// fetchK is how many nearest neighbours feed the MMR re-ranking.
	fetchK = 20
	// mmrLambda balances relevance against diversity in MMR selection.
	mmrLambda = 0.5
)

// Manager owns the vector index over one store backend. It is bound either by
// Build (embed and persist a fresh index) or by Load (attach to a persisted
// one); the two are never mixed within a run.
type Manager struct {
	store          vectorstore.Store
	embedder       embedding.Service
	embeddingModel string
	logger         zerolog.Logger
}

func NewManager(store vectorstore.Store, embedder embedding.Service, embeddingModel string, logger zerolog.Logger) *Manager {
	return &Manager{
		store:          store,
		embedder:       embedder,
		embeddingModel: embeddingModel,
		logger:         logger,
	}
}

// Build embeds every section and persists a fresh index. It fails with
// ErrEmptyCorpus before touching the store when sections is empty, and the
// index is ready for Retrieve as soon as it returns.
func (m *Manager) Build(ctx context.Context, sections []models.Section) error {
	if len(sections) == 0 {
		return ErrEmptyCorpus
	}

	vectors := make([][]float32, 0, len(sections))
	for _, section := range sections {
		vector, err := m.embedder.EmbedQuery(ctx, section.Content)
		if err != nil {
			return fmt.Errorf("failed to embed section %s#%d: %w", section.SourcePath, section.Ordinal, err)
		}
		vectors = append(vectors, vector)
	}

	if err := m.store.Create(ctx); err != nil {
		return err
	}
	if err := m.store.Add(ctx, sections, vectors); err != nil {
		return err
	}
	meta := vectorstore.Metadata{
		EmbeddingModel: m.embeddingModel,
		Sections:       len(sections),
		CreatedAt:      time.Now().UTC(),
	}
	if err := m.store.Finalize(ctx, meta); err != nil {
		return err
	}
	m.logger.Info().Int("sections", len(sections)).Str("embedding_model", m.embeddingModel).Msg("index built")
	return nil
}

// Load attaches to a previously persisted index without recomputing any
// embeddings. vectorstore.ErrNotFound if no completed build exists,
// vectorstore.ErrModelMismatch if it was built with another embedding model.
func (m *Manager) Load(ctx context.Context) error {
	meta, err := m.store.Open(ctx, m.embeddingModel)
	if err != nil {
		return err
	}
	count, err := m.store.Count(ctx)
	if err != nil {
		return err
	}
	m.logger.Info().
		Int("sections", count).
		Str("embedding_model", meta.EmbeddingModel).
		Time("created_at", meta.CreatedAt).
		Msg("index loaded")
	return nil
}

// Retrieve returns up to k sections for the query, selected with maximal
// marginal relevance over the fetchK nearest neighbours: each pick trades
// relevance to the query against similarity to the sections already picked.
func (m *Manager) Retrieve(ctx context.Context, query string, k int) ([]models.Section, error) {
	queryVector, err := m.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := m.store.Search(ctx, queryVector, fetchK)
	if err != nil {
		return nil, err
	}

	picked := maximalMarginalRelevance(queryVector, hits, k, mmrLambda)
	sections := make([]models.Section, 0, len(picked))
	for _, i := range picked {
		sections = append(sections, hits[i].Section)
	}
	m.logger.Info().Str("query", query).Int("candidates", len(hits)).Int("retrieved", len(sections)).Msg("sections retrieved")
	return sections, nil
}
