package chromemdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"docs-rag/internal/models"
	"docs-rag/internal/vectorstore"
)

const (
	collectionName = "sections"
	compress       = false
	metaFilename   = "index.yaml"
	dataDirname    = "chromem"
)

// Store persists embedded sections in a chromem-go database on disk. The
// layout under the base directory is a chromem data directory plus an
// index.yaml sidecar holding the build metadata; the sidecar doubles as the
// build-completed marker.
type Store struct {
	baseDir    string
	db         *chromem.DB
	collection *chromem.Collection
	logger     zerolog.Logger
}

func NewStore(baseDir string, logger zerolog.Logger) *Store {
	return &Store{baseDir: baseDir, logger: logger}
}

func (s *Store) dataDir() string  { return filepath.Join(s.baseDir, dataDirname) }
func (s *Store) metaPath() string { return filepath.Join(s.baseDir, metaFilename) }

func (s *Store) Create(ctx context.Context) error {
	if err := os.RemoveAll(s.dataDir()); err != nil {
		return fmt.Errorf("failed to clear vector database: %v", err)
	}
	if err := os.Remove(s.metaPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear index metadata: %v", err)
	}
	db, err := chromem.NewPersistentDB(s.dataDir(), compress)
	if err != nil {
		return fmt.Errorf("failed to create database: %v", err)
	}
	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create collection: %v", err)
	}
	s.db = db
	s.collection = c
	return nil
}

func (s *Store) Add(ctx context.Context, sections []models.Section, vectors [][]float32) error {
	if len(sections) != len(vectors) {
		return fmt.Errorf("sections and vectors length mismatch: %d != %d", len(sections), len(vectors))
	}
	docs := make([]chromem.Document, 0, len(sections))
	for i, section := range sections {
		docs = append(docs, chromem.Document{
			ID:        fmt.Sprintf("%s#%d", section.SourcePath, section.Ordinal),
			Content:   section.Content,
			Metadata:  sectionMetadata(section),
			Embedding: vectors[i],
		})
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

func (s *Store) Finalize(ctx context.Context, meta vectorstore.Metadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal index metadata: %v", err)
	}
	if err := os.WriteFile(s.metaPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write index metadata: %v", err)
	}
	s.logger.Info().Str("path", s.metaPath()).Int("sections", meta.Sections).Msg("index metadata written")
	return nil
}

func (s *Store) Open(ctx context.Context, embeddingModel string) (vectorstore.Metadata, error) {
	var meta vectorstore.Metadata
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		if os.IsNotExist(err) {
			return meta, vectorstore.ErrNotFound
		}
		return meta, fmt.Errorf("failed to read index metadata: %v", err)
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse index metadata: %v", err)
	}
	if meta.EmbeddingModel != embeddingModel {
		return meta, fmt.Errorf("%w: index has %q, configured %q",
			vectorstore.ErrModelMismatch, meta.EmbeddingModel, embeddingModel)
	}
	db, err := chromem.NewPersistentDB(s.dataDir(), compress)
	if err != nil {
		return meta, fmt.Errorf("failed to open database: %v", err)
	}
	c := db.GetCollection(collectionName, nil)
	if c == nil {
		return meta, vectorstore.ErrNotFound
	}
	s.db = db
	s.collection = c
	return meta, nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]vectorstore.Hit, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		KResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	hits := make([]vectorstore.Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, vectorstore.Hit{
			Section:    sectionFromResult(r),
			Embedding:  r.Embedding,
			Similarity: r.Similarity,
		})
	}
	return hits, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

func sectionMetadata(section models.Section) map[string]string {
	meta := map[string]string{
		"source":  section.SourcePath,
		"ordinal": strconv.Itoa(section.Ordinal),
	}
	for level, text := range section.Headers {
		meta["header_"+strconv.Itoa(level)] = text
	}
	return meta
}

func sectionFromResult(r chromem.Result) models.Section {
	headers := make(map[int]string)
	for level := 1; level <= 4; level++ {
		if text, ok := r.Metadata["header_"+strconv.Itoa(level)]; ok {
			headers[level] = text
		}
	}
	ordinal, _ := strconv.Atoi(r.Metadata["ordinal"])
	return models.Section{
		Content:    r.Content,
		Headers:    headers,
		SourcePath: r.Metadata["source"],
		Ordinal:    ordinal,
	}
}
