package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tealeg/xlsx"
)

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".docx", ".pptx", ".xlsx", ".ods", ".txt", ".PDF", ".Xlsx"} {
		if !Supported(ext) {
			t.Errorf("Supported(%q) = false", ext)
		}
	}
	for _, ext := range []string{".md", ".html", ".csv", ""} {
		if Supported(ext) {
			t.Errorf("Supported(%q) = true", ext)
		}
	}
}

func TestToMarkdownUnsupported(t *testing.T) {
	if _, err := ToMarkdown("notes.html"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestToMarkdownText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("# Heading\n\nplain notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ToMarkdown(path)
	if err != nil {
		t.Fatalf("ToMarkdown() error: %v", err)
	}
	if got != "# Heading\n\nplain notes\n" {
		t.Errorf("ToMarkdown() = %q", got)
	}
}

func TestToMarkdownXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		t.Fatal(err)
	}
	header := sheet.AddRow()
	header.AddCell().SetString("sample")
	header.AddCell().SetString("value")
	row := sheet.AddRow()
	row.AddCell().SetString("s1")
	row.AddCell().SetString("42")
	sheet.AddRow() // empty rows are dropped
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := ToMarkdown(path)
	if err != nil {
		t.Fatalf("ToMarkdown() error: %v", err)
	}
	if !strings.Contains(got, "## Sheet: Results\n") {
		t.Errorf("missing sheet header in %q", got)
	}
	if !strings.Contains(got, "sample | value\n") {
		t.Errorf("missing header row in %q", got)
	}
	if !strings.Contains(got, "s1 | 42\n") {
		t.Errorf("missing data row in %q", got)
	}
}

func TestFormatRow(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  string
	}{
		{"empty", nil, ""},
		{"all blank", []string{"", "  "}, ""},
		{"single", []string{"a"}, "a\n"},
		{"joined", []string{"a", "b", "c"}, "a | b | c\n"},
		{"trimmed with gap", []string{" a ", "", "c"}, "a |  | c\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRow(tt.cells); got != tt.want {
				t.Errorf("formatRow(%v) = %q, want %q", tt.cells, got, tt.want)
			}
		})
	}
}

func TestExtractTaggedText(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		open string
		end  string
		want string
	}{
		{
			name: "word runs",
			xml:  `<w:r><w:t>Hello </w:t></w:r><w:r><w:t>world</w:t></w:r>`,
			open: "<w:t",
			end:  "</w:t>",
			want: "Hello world",
		},
		{
			name: "run with attributes",
			xml:  `<w:t xml:space="preserve"> spaced </w:t>`,
			open: "<w:t",
			end:  "</w:t>",
			want: " spaced ",
		},
		{
			name: "self-closing run skipped",
			xml:  `<w:t/><w:t>after</w:t>`,
			open: "<w:t",
			end:  "</w:t>",
			want: "after",
		},
		{
			name: "slide text",
			xml:  `<a:r><a:t>Title</a:t></a:r><a:r><a:t> slide</a:t></a:r>`,
			open: "<a:t",
			end:  "</a:t>",
			want: "Title slide",
		},
		{
			name: "no match",
			xml:  `<p>plain</p>`,
			open: "<a:t",
			end:  "</a:t>",
			want: "",
		},
		{
			name: "unterminated run",
			xml:  `<w:t>dangling`,
			open: "<w:t",
			end:  "</w:t>",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTaggedText(tt.xml, tt.open, tt.end); got != tt.want {
				t.Errorf("extractTaggedText() = %q, want %q", got, tt.want)
			}
		})
	}
}
