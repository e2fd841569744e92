package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docs-rag/internal/config"
	"docs-rag/internal/helper"
	"docs-rag/internal/models"
	"docs-rag/internal/vectorstore"
)

// The vector(768) column matches the output dimension of nomic-embed-text,
// the default embedding model.

type sectionRow struct {
	bun.BaseModel `bun:"table:sections,alias:s"`
	ID            string    `bun:"id,pk"`
	Source        string    `bun:"source,notnull"`
	Ordinal       int       `bun:"ordinal,notnull"`
	Content       string    `bun:"content,notnull"`
	Headers       string    `bun:"headers,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
	Similarity    float64   `bun:"similarity,scanonly"`
}

type metaRow struct {
	bun.BaseModel  `bun:"table:index_meta,alias:m"`
	ID             int64     `bun:"id,pk"`
	EmbeddingModel string    `bun:"embedding_model,notnull"`
	Sections       int       `bun:"sections,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

// Store keeps embedded sections in Postgres with the pgvector extension.
type Store struct {
	db     *bun.DB
	logger zerolog.Logger
}

func NewStore(cfg *config.PostgresConfig, logger zerolog.Logger) *Store {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db, logger: logger}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Create(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable pgvector: %v", err)
	}
	for _, model := range []any{(*sectionRow)(nil), (*metaRow)(nil)} {
		if _, err := s.db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %v", err)
		}
		if _, err := s.db.NewCreateTable().Model(model).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}
	return nil
}

func (s *Store) Add(ctx context.Context, sections []models.Section, vectors [][]float32) error {
	if len(sections) != len(vectors) {
		return fmt.Errorf("sections and vectors length mismatch: %d != %d", len(sections), len(vectors))
	}
	rows := make([]sectionRow, 0, len(sections))
	for i, section := range sections {
		id, err := helper.GenerateUUID()
		if err != nil {
			return err
		}
		headers, err := json.Marshal(section.Headers)
		if err != nil {
			return fmt.Errorf("failed to encode headers: %v", err)
		}
		rows = append(rows, sectionRow{
			ID:        id,
			Source:    section.SourcePath,
			Ordinal:   section.Ordinal,
			Content:   section.Content,
			Headers:   string(headers),
			Embedding: vectors[i],
		})
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store sections: %v", err)
	}
	return nil
}

func (s *Store) Finalize(ctx context.Context, meta vectorstore.Metadata) error {
	row := &metaRow{
		ID:             1,
		EmbeddingModel: meta.EmbeddingModel,
		Sections:       meta.Sections,
		CreatedAt:      meta.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store index metadata: %v", err)
	}
	return nil
}

func (s *Store) Open(ctx context.Context, embeddingModel string) (vectorstore.Metadata, error) {
	var meta vectorstore.Metadata
	row := new(metaRow)
	if err := s.db.NewSelect().Model(row).Where("id = 1").Scan(ctx); err != nil {
		// A missing table or missing row both mean no completed build.
		return meta, vectorstore.ErrNotFound
	}
	meta = vectorstore.Metadata{
		EmbeddingModel: row.EmbeddingModel,
		Sections:       row.Sections,
		CreatedAt:      row.CreatedAt,
	}
	if meta.EmbeddingModel != embeddingModel {
		return meta, fmt.Errorf("%w: index has %q, configured %q",
			vectorstore.ErrModelMismatch, meta.EmbeddingModel, embeddingModel)
	}
	count, err := s.Count(ctx)
	if err != nil {
		return meta, err
	}
	if count == 0 {
		return meta, vectorstore.ErrNotFound
	}
	return meta, nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Hit, error) {
	var rows []sectionRow
	err := s.db.NewSelect().
		Model(&rows).
		ColumnExpr("s.*").
		ColumnExpr("1 - (embedding <=> ?) AS similarity", vector).
		OrderExpr("embedding <=> ?", vector).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search sections: %v", err)
	}
	hits := make([]vectorstore.Hit, 0, len(rows))
	for _, row := range rows {
		headers := make(map[int]string)
		if err := json.Unmarshal([]byte(row.Headers), &headers); err != nil {
			return nil, fmt.Errorf("failed to decode headers: %v", err)
		}
		hits = append(hits, vectorstore.Hit{
			Section: models.Section{
				Content:    row.Content,
				Headers:    headers,
				SourcePath: row.Source,
				Ordinal:    row.Ordinal,
			},
			Embedding:  row.Embedding,
			Similarity: float32(row.Similarity),
		})
	}
	return hits, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*sectionRow)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count sections: %v", err)
	}
	return count, nil
}
