package text

import "strings"

// Chunk splits text into overlapping windows of at most size runes, advancing
// by size-overlap runes each step. Consecutive chunks therefore share an
// overlap-rune region, which preserves cross-boundary context for retrieval.
// Windows that are blank after trimming are dropped, so every returned chunk
// is non-empty. Blank input returns nil.
func Chunk(text string, size, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	step := size - overlap
	if step < 1 {
		step = 1
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			chunks = append(chunks, window)
		}
	}
	return chunks
}
