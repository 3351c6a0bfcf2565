package retrieval

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrNilResults = errors.New("results must not be nil")

type dedupKey struct {
	id     string
	source string
	chunk  int
}

// AssembleContext concatenates results into labeled context blocks under a
// character budget and returns the subset that was included, in order.
// Results are consumed best-first as given; exact repeats and blank texts are
// skipped, and the first block that would overflow the budget ends assembly
// (strict prefix truncation, not best-fit packing).
func AssembleContext(results []Result, maxChars int) (string, []Result, error) {
	if results == nil {
		return "", nil, ErrNilResults
	}
	if maxChars < 0 {
		maxChars = 0
	}

	var b strings.Builder
	var used []Result
	total := 0
	seen := make(map[dedupKey]bool)

	for _, r := range results {
		key := dedupKey{id: r.ID, source: r.Source, chunk: r.Chunk}
		if seen[key] {
			continue
		}
		seen[key] = true

		doc := strings.TrimSpace(r.Text)
		if doc == "" {
			continue
		}

		block := fmt.Sprintf("Source: %s (chunk %d)\n%s\n\n", r.Source, r.Chunk, doc)
		if total+utf8.RuneCountInString(block) > maxChars {
			break
		}
		b.WriteString(block)
		used = append(used, r)
		total += utf8.RuneCountInString(block)
	}
	return b.String(), used, nil
}
