package rag

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"docs-rag/internal/llmservice"
	"docs-rag/internal/models"
)

// Retriever returns the most relevant sections for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.Section, error)
}

// RAG answers questions over an indexed corpus. With generation disabled it
// runs in retrieval-only mode and answers carry just the retrieved context.
type RAG struct {
	retriever Retriever
	generator llmservice.Generator
	generate  bool
	logger    zerolog.Logger
}

func NewRAG(retriever Retriever, generator llmservice.Generator, generate bool, logger zerolog.Logger) *RAG {
	return &RAG{
		retriever: retriever,
		generator: generator,
		generate:  generate,
		logger:    logger,
	}
}

// GeneratesAnswers reports whether the engine invokes the generation service
// or only retrieves context.
func (r *RAG) GeneratesAnswers() bool { return r.generate }

// Retrieve returns the context sections for a question.
func (r *RAG) Retrieve(ctx context.Context, question string) ([]models.Section, error) {
	return r.retriever.Retrieve(ctx, question, models.TopK)
}

// Answer builds the generation prompt from the retrieved sections and invokes
// the generation service.
func (r *RAG) Answer(ctx context.Context, question string, sections []models.Section) (string, error) {
	prompt := BuildPrompt(FormatSections(sections), question)
	return r.generator.Generate(ctx, prompt, models.Temperature)
}

// Query runs one full turn: retrieve context, then generate an answer unless
// the engine is retrieval-only.
func (r *RAG) Query(ctx context.Context, question string) (*models.Answer, error) {
	sections, err := r.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	answer := &models.Answer{Question: question, Context: sections}
	if !r.generate {
		return answer, nil
	}
	content, err := r.Answer(ctx, question, sections)
	if err != nil {
		return nil, err
	}
	answer.Content = content
	return answer, nil
}

// FormatSections joins section contents with a blank line between each, in
// retrieval order.
func FormatSections(sections []models.Section) string {
	contents := make([]string, 0, len(sections))
	for _, section := range sections {
		contents = append(contents, section.Content)
	}
	return strings.Join(contents, "\n\n")
}

// BuildPrompt substitutes the context block and question into the fixed
// prompt template.
func BuildPrompt(contextBlock, question string) string {
	return strings.NewReplacer(
		"{context}", contextBlock,
		"{question}", question,
	).Replace(models.RAGPromptTemplate)
}
