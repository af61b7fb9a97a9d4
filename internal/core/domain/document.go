package domain

// Document is the raw input text of one extraction run.
// It is immutable once loaded and owned by the pipeline for the duration of a run.
type Document struct {
	// ID identifies the document within a run (usually derived from the URI).
	ID string

	// URI is the original location (file path, "-" for stdin).
	URI string

	// Content is the full text content.
	Content string
}

// Len returns the content length in bytes.
func (d *Document) Len() int {
	return len(d.Content)
}

// Chunk is a bounded window of a Document.
// Consecutive chunks overlap by the configured amount.
type Chunk struct {
	// Index is the ordinal position within the document, starting at 0.
	Index int

	// Offset is the byte offset of Text within the parent Document.
	Offset int

	// Text is the content of this window.
	Text string
}

// End returns the byte offset just past the end of the chunk.
func (c Chunk) End() int {
	return c.Offset + len(c.Text)
}

// Len returns the chunk length in bytes.
func (c Chunk) Len() int {
	return len(c.Text)
}
