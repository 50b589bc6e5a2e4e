package chunker

import (
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 100
)

// Chunk splits text with a fixed-width sliding window over runes. Each
// window starts chunkSize-overlap runes after the previous one and the
// last window is clipped to the end of the text.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, errs.Validation("chunk_size", "must be positive")
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, errs.Validation("overlap", "must be in [0, chunk_size)")
	}
	if text == "" {
		return []string{}, nil
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}, nil
	}

	step := chunkSize - overlap
	chunks := make([]string, 0, Count(len(runes), chunkSize, overlap))
	for start := 0; ; start += step {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}

// Count is the number of windows Chunk produces for n runes.
func Count(n, chunkSize, overlap int) int {
	switch {
	case n == 0:
		return 0
	case n <= chunkSize:
		return 1
	}
	step := chunkSize - overlap
	return (n - overlap + step - 1) / step
}
