package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"docs-rag/internal/models"
	"docs-rag/internal/parser"
)

// Loader reads the corpus source files under a root directory.
type Loader struct {
	extraFormats bool
	logger       zerolog.Logger
}

// New creates a loader. With extraFormats set, files in the formats the
// parser understands (PDF, DOCX, spreadsheets, ...) are converted to markdown
// and ingested alongside the .md files.
func New(extraFormats bool, logger zerolog.Logger) *Loader {
	return &Loader{extraFormats: extraFormats, logger: logger}
}

// Load returns one Document per matched file under root, in directory
// traversal order. An unreadable matched file is an error, not a skip; a root
// with no matches yields an empty result.
func (l *Loader) Load(root string) ([]models.Document, error) {
	var docs []models.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		switch {
		case ext == models.MarkdownExt:
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			docs = append(docs, models.Document{SourcePath: path, RawText: string(data)})
		case l.extraFormats && parser.Supported(ext):
			text, err := parser.ToMarkdown(path)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
			docs = append(docs, models.Document{SourcePath: path, RawText: text})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info().Str("root", root).Int("documents", len(docs)).Msg("documents loaded")
	return docs, nil
}
