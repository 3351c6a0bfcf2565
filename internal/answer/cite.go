package answer

import (
	"errors"
	"fmt"
	"strings"

	"clarifile/internal/retrieval"
)

var (
	ErrEmptyAnswerText = errors.New("answer text must not be empty")
	ErrNilUsed         = errors.New("used results must not be nil")
)

// LabelSources assigns 1-based integer labels to each distinct source in
// first-seen order. Given the same input order the labels are stable.
func LabelSources(used []retrieval.Result) map[string]int {
	labels := make(map[string]int)
	for _, r := range used {
		if _, ok := labels[r.Source]; !ok {
			labels[r.Source] = len(labels) + 1
		}
	}
	return labels
}

// RenderCitations appends a Sources section listing each distinct source
// with its label and the chunk index it was first seen at. No used results
// means no section is appended.
func RenderCitations(answerText string, used []retrieval.Result) (string, error) {
	if strings.TrimSpace(answerText) == "" {
		return "", ErrEmptyAnswerText
	}
	if used == nil {
		return "", ErrNilUsed
	}
	if len(used) == 0 {
		return answerText, nil
	}

	labels := LabelSources(used)
	var b strings.Builder
	b.WriteString(answerText)
	b.WriteString("\n\nSources:\n")

	seen := make(map[string]bool)
	for _, r := range used {
		if seen[r.Source] {
			continue
		}
		seen[r.Source] = true
		fmt.Fprintf(&b, "[%d] %s (chunk %d)\n", labels[r.Source], r.Source, r.Chunk)
	}
	return b.String(), nil
}
