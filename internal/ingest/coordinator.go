package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"clarifile/internal/extract"
	"clarifile/internal/text"
	"clarifile/internal/vector"
)

// Outcome classifies what happened to a single source during a batch.
type Outcome string

const (
	OutcomeIngested         Outcome = "ingested"
	OutcomeSkippedEmpty     Outcome = "skipped-empty"
	OutcomeSkippedDuplicate Outcome = "skipped-duplicate"
	OutcomeFailed           Outcome = "failed"
)

// ConflictPolicy decides what re-ingesting already-stored content does.
type ConflictPolicy string

const (
	ConflictSkip    ConflictPolicy = "skip"
	ConflictReplace ConflictPolicy = "replace"
	ConflictFail    ConflictPolicy = "fail"
)

// SourceResult is the per-source outcome of a batch. Failures are recorded
// here instead of aborting the batch; partial success is the default.
type SourceResult struct {
	Source  string  `json:"source"`
	Outcome Outcome `json:"outcome"`
	Chunks  int     `json:"chunks"`
	Err     string  `json:"error,omitempty"`
}

type Report struct {
	Sources []SourceResult `json:"sources"`
}

func (r *Report) TotalChunks() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Chunks
	}
	return total
}

// VectorStore is the slice of the store the coordinator needs.
type VectorStore interface {
	Add(ctx context.Context, collection string, recs []vector.Record) error
	Delete(ctx context.Context, collection string, ids []string) error
}

type Config struct {
	Collection   string
	ChunkSize    int
	ChunkOverlap int
	OnConflict   ConflictPolicy
	FetchTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Collection == "" {
		c.Collection = "docs"
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 1200
		c.ChunkOverlap = 200
	}
	if c.OnConflict == "" {
		c.OnConflict = ConflictSkip
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 30 * time.Second
	}
}

// Coordinator drives extract → normalize → chunk → store for batches of
// files and URLs.
type Coordinator struct {
	store  VectorStore
	cfg    Config
	client *http.Client
}

func NewCoordinator(store VectorStore, cfg Config) *Coordinator {
	cfg.applyDefaults()
	return &Coordinator{
		store:  store,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// IngestFiles extracts, chunks and stores each PDF on disk. A source that
// fails to extract is recorded as failed and the batch continues.
func (c *Coordinator) IngestFiles(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		base := filepath.Base(path)
		raw, err := extract.PDFFile(path)
		if err != nil {
			slog.WarnContext(ctx, "skipping file", "source", base, "error", err)
			report.Sources = append(report.Sources, SourceResult{Source: base, Outcome: OutcomeFailed, Err: err.Error()})
			continue
		}

		report.Sources = append(report.Sources, c.storeSource(ctx, base, "pdf", raw))
	}
	return report, nil
}

// IngestURLs fetches, extracts, chunks and stores each URL. Network and
// parse failures skip that URL and the batch continues.
func (c *Coordinator) IngestURLs(ctx context.Context, urls []string) (*Report, error) {
	report := &Report{}
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		slug := Slug(u)
		raw, err := extract.URL(ctx, c.client, u)
		if err != nil {
			slog.WarnContext(ctx, "skipping url", "source", u, "error", err)
			report.Sources = append(report.Sources, SourceResult{Source: slug, Outcome: OutcomeFailed, Err: err.Error()})
			continue
		}

		report.Sources = append(report.Sources, c.storeSource(ctx, slug, "url", raw))
	}
	return report, nil
}

// storeSource runs normalize → chunk → batched add for a single source and
// applies the configured conflict policy.
func (c *Coordinator) storeSource(ctx context.Context, source, kind, raw string) SourceResult {
	normalized := text.Normalize(raw)
	if normalized == "" {
		slog.InfoContext(ctx, "source yielded no text", "source", source, "kind", kind)
		return SourceResult{Source: source, Outcome: OutcomeSkippedEmpty}
	}

	chunks := text.Chunk(normalized, c.cfg.ChunkSize, c.cfg.ChunkOverlap)
	recs := make([]vector.Record, len(chunks))
	for i, chunk := range chunks {
		recs[i] = vector.Record{
			ID:   chunkID(source, i, chunk),
			Text: chunk,
			Meta: vector.Metadata{Source: source, Kind: kind, Chunk: i},
		}
	}

	if c.cfg.OnConflict == ConflictReplace {
		ids := make([]string, len(recs))
		for i, rec := range recs {
			ids[i] = rec.ID
		}
		if err := c.store.Delete(ctx, c.cfg.Collection, ids); err != nil {
			return SourceResult{Source: source, Outcome: OutcomeFailed, Err: err.Error()}
		}
	}

	err := c.store.Add(ctx, c.cfg.Collection, recs)
	switch {
	case err == nil:
	case errors.Is(err, vector.ErrDuplicateID) && c.cfg.OnConflict == ConflictSkip:
		slog.InfoContext(ctx, "source already ingested", "source", source)
		return SourceResult{Source: source, Outcome: OutcomeSkippedDuplicate}
	default:
		return SourceResult{Source: source, Outcome: OutcomeFailed, Err: err.Error()}
	}

	slog.InfoContext(ctx, "source ingested", "source", source, "kind", kind, "chunks", len(chunks))
	return SourceResult{Source: source, Outcome: OutcomeIngested, Chunks: len(chunks)}
}

// chunkID derives a collection-unique identifier from the chunk's content,
// so re-ingesting identical content regenerates the same id instead of
// colliding by accident.
func chunkID(source string, index int, chunk string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", source, index, chunk)))
	return fmt.Sprintf("%s-%d-%x", source, index, sum[:6])
}

// Slug shortens a URL into a human-readable source name.
func Slug(raw string) string {
	s := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		s = u.Host + u.Path
	}
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 48 {
		slug = strings.Trim(slug[:48], "-")
	}
	if slug == "" {
		return "url"
	}
	return slug
}
