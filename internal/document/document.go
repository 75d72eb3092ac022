package document

// Document is the raw extracted text of one uploaded source, plus metadata.
// Documents are immutable; a new upload produces a new Document.
type Document struct {
	// Name is the source name (usually the original file name).
	Name string

	// Text is the full extracted plain text.
	Text string
}

// Len returns the length of the document text in bytes.
func (d Document) Len() int { return len(d.Text) }

// Chunk is a bounded contiguous slice of a Document's text, the unit of
// retrieval. Chunks carry a stable index and byte offsets into the source
// text; the index doubles as the retrieval tie-break.
type Chunk struct {
	// Index is the position of this chunk in document order, starting at 0.
	Index int

	// Start and End are byte offsets into the document text (End exclusive).
	Start int
	End   int

	// Text is the chunk content, identical to doc.Text[Start:End].
	Text string
}
