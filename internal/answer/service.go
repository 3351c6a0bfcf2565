package answer

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"clarifile/internal/prompt"
	"clarifile/internal/retrieval"
)

var ErrEmptyQuery = errors.New("query must not be empty")

// emptyContext stands in for the context block when retrieval finds
// nothing, so the model can still answer that it does not know.
const emptyContext = "(no relevant context found)"

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]retrieval.Result, error)
}

// Generator produces a completion for a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, promptText string) (string, error)
}

// Options tunes a single Answer call. Nil fields fall back to defaults.
type Options struct {
	K               *int
	MaxContextChars *int
	System          *string
	Citations       *bool
}

// SourceRef identifies one chunk that contributed to an answer.
type SourceRef struct {
	Source   string  `json:"source"`
	Chunk    int     `json:"chunk"`
	Score    float64 `json:"score"`
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
}

// Result is the outcome of one answered question.
type Result struct {
	Answer  string      `json:"answer"`
	Prompt  string      `json:"-"`
	Sources []SourceRef `json:"sources"`
}

// Service orchestrates retrieval, context assembly, prompting and
// generation into a single answered question.
type Service struct {
	retriever       Retriever
	generator       Generator
	logger          *slog.Logger
	defaultK        int
	maxContextChars int
	system          string
}

func NewService(retriever Retriever, generator Generator, maxContextChars int, system string, logger *slog.Logger) *Service {
	if maxContextChars <= 0 {
		maxContextChars = 6000
	}
	if system == "" {
		system = prompt.DefaultSystem
	}
	return &Service{
		retriever:       retriever,
		generator:       generator,
		logger:          logger,
		defaultK:        5,
		maxContextChars: maxContextChars,
		system:          system,
	}
}

// Answer runs the full pipeline for one question. Retrieval, generation
// and rendering failures are all propagated to the caller.
func (s *Service) Answer(ctx context.Context, query string, opts Options) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	k := s.defaultK
	if opts.K != nil && *opts.K > 0 {
		k = *opts.K
	}
	maxChars := s.maxContextChars
	if opts.MaxContextChars != nil {
		maxChars = *opts.MaxContextChars
	}
	system := s.system
	if opts.System != nil && strings.TrimSpace(*opts.System) != "" {
		system = *opts.System
	}
	citations := true
	if opts.Citations != nil {
		citations = *opts.Citations
	}

	// 1. Retrieve candidate chunks.
	results, err := s.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}

	// 2. Assemble the context block under the character budget.
	contextText, used, err := retrieval.AssembleContext(results, maxChars)
	if err != nil {
		return nil, err
	}
	if contextText == "" {
		contextText = emptyContext
	}

	// 3. Build the prompt and generate.
	promptText, err := prompt.Build(query, contextText, system)
	if err != nil {
		return nil, err
	}
	answerText, err := s.generator.Generate(ctx, promptText)
	if err != nil {
		return nil, err
	}

	// 4. Optionally append citations for the chunks actually used.
	if citations && len(used) > 0 {
		answerText, err = RenderCitations(answerText, used)
		if err != nil {
			return nil, err
		}
	}

	refs := make([]SourceRef, 0, len(used))
	for _, r := range used {
		refs = append(refs, SourceRef{
			Source:   r.Source,
			Chunk:    r.Chunk,
			Score:    r.Score,
			ID:       r.ID,
			Distance: r.Distance,
		})
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "question answered",
			"retrieved", len(results),
			"used", len(used),
			"context_chars", len(contextText),
		)
	}

	return &Result{Answer: answerText, Prompt: promptText, Sources: refs}, nil
}
