package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSystem is the answer policy used when the caller supplies none.
const DefaultSystem = "You must answer strictly from the provided context. " +
	"If the answer is not in the context, say you don't know."

var (
	ErrEmptyQuery   = errors.New("query must not be empty")
	ErrEmptyContext = errors.New("context must not be empty")
)

// Build combines the system policy, retrieved context and question into a
// single generation prompt. The template is fixed; only the system message
// is configurable.
func Build(query, context, system string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", ErrEmptyQuery
	}
	c := strings.TrimSpace(context)
	if c == "" {
		return "", ErrEmptyContext
	}

	sys := strings.TrimSpace(system)
	if sys == "" {
		sys = DefaultSystem
	}

	return fmt.Sprintf("%s\n\nContext:\n%s\n\nQuestion: %s\nAnswer:", sys, c, q), nil
}
