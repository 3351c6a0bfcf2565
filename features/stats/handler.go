package stats

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"clarifile/internal/middleware"
)

// ChunkCounter reports how many chunks a collection holds.
type ChunkCounter interface {
	Count(collection string) int
}

type Handler struct {
	store      ChunkCounter
	collection string
}

func NewHandler(store ChunkCounter, collection string) *Handler {
	return &Handler{store: store, collection: collection}
}

type StatsResponse struct {
	Collection string `json:"collection"`
	Chunks     int    `json:"chunks"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.InfoContext(ctx, "getting stats", "correlationId", middleware.GetCorrelationID(ctx))

	resp := StatsResponse{
		Collection: h.collection,
		Chunks:     h.store.Count(h.collection),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
