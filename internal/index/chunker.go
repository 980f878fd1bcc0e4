package index

import (
	"strings"

	"github.com/google/uuid"

	"github.com/xaenox/aidesk/internal/models"
)

// Chunker splits document text into overlapping fixed-size chunks,
// breaking at word boundaries where possible.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split chunks content and stamps every chunk with its origin source.
func (c *Chunker) Split(content, source string) []models.Chunk {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var chunks []models.Chunk
	start := 0
	for start < len(content) {
		end := start + c.size
		if end > len(content) {
			end = len(content)
		}

		// Prefer a word boundary so terms stay intact for lexical scoring.
		// The cut must stay ahead of the overlap distance or the next start
		// would not advance; unbroken runs longer than the chunk size (URLs,
		// minified text) keep the hard cut instead.
		if end < len(content) {
			if lastSpace := strings.LastIndex(content[start:end], " "); lastSpace > c.overlap {
				end = start + lastSpace
			}
		}

		text := strings.TrimSpace(content[start:end])
		if text != "" {
			chunks = append(chunks, models.Chunk{
				ID:      uuid.New().String(),
				Content: text,
				Source:  source,
			})
		}

		if end == len(content) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}
