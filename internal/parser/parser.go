package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// Supported reports whether files with the given extension can be converted
// to markdown.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".pptx", ".xlsx", ".ods", ".txt":
		return true
	}
	return false
}

// ToMarkdown converts a document file to markdown text. Page, slide and sheet
// boundaries become level-2 headers so the converted text chunks the same way
// native markdown does.
func ToMarkdown(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return parsePDF(path)
	case ".docx":
		return parseDOCX(path)
	case ".pptx":
		return parsePPTX(path)
	case ".xlsx":
		return parseXLSX(path)
	case ".ods":
		return parseODS(path)
	case ".txt":
		return parseText(path)
	default:
		return "", fmt.Errorf("unsupported file format: %s", ext)
	}
}

func parsePDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		fmt.Fprintf(&text, "## Page %d\n\n%s\n\n", i, strings.TrimSpace(pageText))
	}
	return text.String(), nil
}

func parseDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	// GetContent returns the raw document XML; paragraphs end with </w:p>
	// and text lives in <w:t> runs.
	content := r.Editable().GetContent()
	var text strings.Builder
	for _, para := range strings.Split(content, "</w:p>") {
		paraText := extractTaggedText(para, "<w:t", "</w:t>")
		if strings.TrimSpace(paraText) == "" {
			continue
		}
		text.WriteString(strings.TrimSpace(paraText))
		text.WriteString("\n\n")
	}
	return text.String(), nil
}

func parsePPTX(path string) (string, error) {
	f, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	slide := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slideText := extractTaggedText(string(data), "<a:t", "</a:t>")
		if strings.TrimSpace(slideText) == "" {
			continue
		}
		slide++
		fmt.Fprintf(&text, "## Slide %d\n\n%s\n\n", slide, strings.TrimSpace(slideText))
	}
	return text.String(), nil
}

func parseXLSX(path string) (string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, sheet := range f.Sheets {
		fmt.Fprintf(&text, "## Sheet: %s\n\n", sheet.Name)
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			text.WriteString(formatRow(cells))
		}
		text.WriteString("\n")
	}
	return text.String(), nil
}

func parseODS(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		fmt.Fprintf(&text, "## Sheet: %s\n\n", sheetName)
		for _, row := range rows {
			text.WriteString(formatRow(row))
		}
		text.WriteString("\n")
	}
	return text.String(), nil
}

func parseText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatRow renders one spreadsheet row as a pipe-separated markdown-ish
// line. Empty rows produce nothing.
func formatRow(cells []string) string {
	trimmed := make([]string, 0, len(cells))
	empty := true
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			empty = false
		}
		trimmed = append(trimmed, cell)
	}
	if empty {
		return ""
	}
	return strings.Join(trimmed, " | ") + "\n"
}

// extractTaggedText pulls the text content of every open..close element pair
// out of raw XML, e.g. <w:t> runs in DOCX or <a:t> runs in PPTX.
func extractTaggedText(xmlContent, open, close string) string {
	var text strings.Builder
	rest := xmlContent
	for {
		start := strings.Index(rest, open)
		if start < 0 {
			break
		}
		rest = rest[start+len(open):]
		// Skip attributes up to the closing bracket of the open tag.
		gt := strings.IndexByte(rest, '>')
		if gt < 0 {
			break
		}
		if gt > 0 && rest[gt-1] == '/' { // self-closing, no text
			rest = rest[gt+1:]
			continue
		}
		rest = rest[gt+1:]
		end := strings.Index(rest, close)
		if end < 0 {
			break
		}
		text.WriteString(rest[:end])
		rest = rest[end+len(close):]
	}
	return text.String()
}
