// Package ingest loads documents into the knowledge base: extract text,
// split into overlapping chunks, embed, and store.
package ingest

import "strings"

const (
	// ChunkSize and ChunkOverlap are in characters.
	ChunkSize    = 250
	ChunkOverlap = 30
)

// ChunkText splits text into overlapping chunks of size characters,
// advancing by size-overlap each step. Boundaries are counted in runes so
// multibyte text never splits mid-character. Chunks are trimmed and empty
// chunks are dropped.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = ChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = ChunkOverlap
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
