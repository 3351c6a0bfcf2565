package vector

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

var ErrDuplicateID = errors.New("duplicate record id")

// Embedder maps text to a fixed-dimension vector. Implementations live under
// internal/adapter.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Metadata is the per-record metadata persisted alongside the chunk text.
type Metadata struct {
	Source string
	Kind   string
	Chunk  int
}

// Record is a persisted unit: a chunk of text with a collection-unique id.
type Record struct {
	ID   string
	Text string
	Meta Metadata
}

// Match is a query hit. Distance is the raw vector-space distance
// (1 - cosine similarity); smaller means more similar.
type Match struct {
	ID       string
	Text     string
	Meta     Metadata
	Distance float64
}

// Store owns a persistent on-disk chromem database. Collections are created
// lazily on first reference and share the store's embedding function.
type Store struct {
	db       *chromem.DB
	embedder Embedder
}

func NewStore(path string, embedder Embedder) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector store at %s: %w", path, err)
	}
	return &Store{db: db, embedder: embedder}, nil
}

func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.Embed(ctx, text)
	}
}

func (s *Store) collection(name string) (*chromem.Collection, error) {
	col, err := s.db.GetOrCreateCollection(name, nil, s.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", name, err)
	}
	return col, nil
}

// Add appends records to the named collection. It fails with ErrDuplicateID
// if any record id already exists; there is no implicit upsert.
func (s *Store) Add(ctx context.Context, collection string, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	col, err := s.collection(collection)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		if _, err := col.GetByID(ctx, rec.ID); err == nil {
			return fmt.Errorf("%w: %s in collection %s", ErrDuplicateID, rec.ID, collection)
		}
	}

	docs := make([]chromem.Document, len(recs))
	for i, rec := range recs {
		docs[i] = chromem.Document{
			ID:      rec.ID,
			Content: rec.Text,
			Metadata: map[string]string{
				"source": rec.Meta.Source,
				"kind":   rec.Meta.Kind,
				"chunk":  strconv.Itoa(rec.Meta.Chunk),
			},
		}
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding %d records to collection %s: %w", len(recs), collection, err)
	}
	return nil
}

// Query embeds the query text with the collection's embedding function and
// returns up to k nearest records, best match first. A missing or empty
// collection yields an empty result, not an error.
func (s *Store) Query(ctx context.Context, collection, query string, k int) ([]Match, error) {
	col := s.db.GetCollection(collection, s.embeddingFunc())
	if col == nil {
		return nil, nil
	}

	// chromem requires k <= document count.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := col.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		chunk, _ := strconv.Atoi(r.Metadata["chunk"])
		matches[i] = Match{
			ID:   r.ID,
			Text: r.Content,
			Meta: Metadata{
				Source: r.Metadata["source"],
				Kind:   r.Metadata["kind"],
				Chunk:  chunk,
			},
			Distance: 1 - float64(r.Similarity),
		}
	}
	return matches, nil
}

// Delete removes records by id. Unknown ids are ignored; a missing collection
// is a no-op.
func (s *Store) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	col := s.db.GetCollection(collection, s.embeddingFunc())
	if col == nil {
		return nil
	}
	if err := col.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("deleting %d records from collection %s: %w", len(ids), collection, err)
	}
	return nil
}

// Count reports the number of records in the named collection.
func (s *Store) Count(collection string) int {
	col := s.db.GetCollection(collection, s.embeddingFunc())
	if col == nil {
		return 0
	}
	return col.Count()
}
