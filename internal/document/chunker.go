package document

import "fmt"

// InvalidChunkingError indicates chunking parameters that violate
// 0 <= overlap < size, size > 0.
type InvalidChunkingError struct {
	Size    int
	Overlap int
}

func (e *InvalidChunkingError) Error() string {
	return fmt.Sprintf("invalid chunking config: size=%d overlap=%d (need size > 0 and 0 <= overlap < size)", e.Size, e.Overlap)
}

// ChunkText splits text into overlapping chunks by sliding a window of
// length size forward by size-overlap. The final chunk is truncated to the
// remaining text rather than padded, so no tail text is lost. Empty text
// yields an empty slice, not an error.
//
// The produced chunks fully cover the text: Reassemble(chunks) == text.
func ChunkText(text string, size, overlap int) ([]Chunk, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, &InvalidChunkingError{Size: size, Overlap: overlap}
	}
	if text == "" {
		return []Chunk{}, nil
	}

	step := size - overlap
	var chunks []Chunk
	for start := 0; ; start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  text[start:end],
		})
		if end == len(text) {
			break
		}
	}
	return chunks, nil
}

// Reassemble reconstructs the original text from chunks produced by
// ChunkText, dropping the overlapping prefix of each chunk after the first.
func Reassemble(chunks []Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	out := chunks[0].Text
	prevEnd := chunks[0].End
	for _, c := range chunks[1:] {
		if c.Start < prevEnd {
			out += c.Text[prevEnd-c.Start:]
		} else {
			out += c.Text
		}
		prevEnd = c.End
	}
	return out
}
