package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"clarifile/internal/middleware"
	"clarifile/internal/vector"
)

var ErrEmptyQuery = errors.New("query must not be empty")

// Result is one retrieved chunk with its similarity score. Score is derived
// from the store's raw distance as clamp(1-distance, 0, 1).
type Result struct {
	Text     string  `json:"text"`
	Source   string  `json:"source"`
	Chunk    int     `json:"chunk"`
	Kind     string  `json:"kind"`
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
	Score    float64 `json:"score"`
}

// Store is the slice of the vector store the retriever needs.
type Store interface {
	Query(ctx context.Context, collection, query string, k int) ([]vector.Match, error)
}

type Service struct {
	store      Store
	collection string
	logger     *QueryLogger
}

func NewService(store Store, collection string, logger *QueryLogger) *Service {
	return &Service{store: store, collection: collection, logger: logger}
}

// Retrieve returns up to k chunks relevant to the query, best match first.
// A blank query is an input error; k is clamped to at least 1. An empty
// result set is a valid outcome, not an error.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k < 1 {
		k = 1
	}

	start := time.Now()
	matches, err := s.store.Query(ctx, s.collection, query, k)
	if err != nil {
		return nil, fmt.Errorf("retrieving chunks: %w", err)
	}

	results := make([]Result, len(matches))
	for i, m := range matches {
		id := m.ID
		if id == "" {
			// Keep every result addressable even when the store returns no id.
			id = fmt.Sprintf("%s-%d", m.Meta.Source, m.Meta.Chunk)
		}
		results[i] = Result{
			Text:     m.Text,
			Source:   m.Meta.Source,
			Chunk:    m.Meta.Chunk,
			Kind:     m.Meta.Kind,
			ID:       id,
			Distance: m.Distance,
			Score:    clampScore(1 - m.Distance),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:         query,
			NumResults:    len(results),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}
	return results, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
