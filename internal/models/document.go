package models

// Document is the raw text of one source file, before chunking.
type Document struct {
	SourcePath string
	RawText    string
}

// Section is a header-scoped chunk of a document. Content keeps the header
// line(s) verbatim; Headers maps header level (1-4) to the most recent header
// text active when the section was opened.
type Section struct {
	Content    string
	Headers    map[int]string
	SourcePath string
	Ordinal    int
}

// Answer is the result of one query turn, with the retrieved context that
// produced it.
type Answer struct {
	Question string
	Context  []Section
	Content  string
}
