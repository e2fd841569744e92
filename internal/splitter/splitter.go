package splitter

import (
	"strings"

	"docs-rag/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// maxHeaderLevel limits which headers open a new section; deeper headers are
// plain body text.
const maxHeaderLevel = 4

var md = goldmark.New()

// Split scans a document line by line and cuts it into header-scoped
// sections. Every `#`..`####` line opens a new section and updates the header
// path at its level, clearing all deeper levels. Header lines stay inside
// their section's content, and line terminators are preserved, so joining the
// section contents reproduces the document exactly.
func Split(doc models.Document) []models.Section {
	var (
		sections []models.Section
		path     [maxHeaderLevel]string
		seen     [maxHeaderLevel]bool
		content  strings.Builder
		open     bool
		headers  map[int]string
	)

	flush := func() {
		if !open {
			return
		}
		sections = append(sections, models.Section{
			Content:    content.String(),
			Headers:    headers,
			SourcePath: doc.SourcePath,
			Ordinal:    len(sections),
		})
		content.Reset()
		open = false
	}

	for _, line := range splitLines(doc.RawText) {
		if level, text, ok := parseHeader(line); ok {
			flush()
			path[level-1] = text
			seen[level-1] = true
			for i := level; i < maxHeaderLevel; i++ {
				path[i] = ""
				seen[i] = false
			}
			headers = snapshot(path, seen)
			open = true
			content.WriteString(line)
			continue
		}
		if !open {
			// Preamble before the first header.
			headers = map[int]string{}
			open = true
		}
		content.WriteString(line)
	}
	flush()
	return sections
}

// SplitAll chunks every document, keeping document order.
func SplitAll(docs []models.Document) []models.Section {
	var sections []models.Section
	for _, doc := range docs {
		sections = append(sections, Split(doc)...)
	}
	return sections
}

// splitLines cuts text into lines keeping each line's terminator, so the
// pieces concatenate back to the original text.
func splitLines(text string) []string {
	var lines []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
	}
	return lines
}

// parseHeader reports whether line is an ATX header of level 1-4 and returns
// its level and plain header text.
func parseHeader(line string) (int, string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > maxHeaderLevel {
		return 0, "", false
	}
	rest := trimmed[level:]
	rest = strings.TrimRight(rest, "\r\n")
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// "#foo" is body text, not a header.
		return 0, "", false
	}
	return level, headerText(strings.TrimSpace(rest)), true
}

// headerText renders the inline markdown of a header to plain text, so the
// header path carries "Bold title" rather than "**Bold** title".
func headerText(raw string) string {
	if raw == "" {
		return ""
	}
	src := []byte(raw)
	root := md.Parser().Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	out := strings.TrimSpace(b.String())
	if out == "" {
		return raw
	}
	return out
}

func snapshot(path [maxHeaderLevel]string, seen [maxHeaderLevel]bool) map[int]string {
	headers := make(map[int]string)
	for i, set := range seen {
		if set {
			headers[i+1] = path[i]
		}
	}
	return headers
}
