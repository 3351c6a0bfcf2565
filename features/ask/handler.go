package ask

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"clarifile/internal/answer"
	"clarifile/internal/llm"
	"clarifile/internal/middleware"
	"clarifile/internal/retrieval"
)

// Answerer runs the full question-answering pipeline.
type Answerer interface {
	Answer(ctx context.Context, query string, opts answer.Options) (*answer.Result, error)
}

type Handler struct {
	answerer Answerer
}

func NewHandler(answerer Answerer) *Handler {
	return &Handler{answerer: answerer}
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question        string  `json:"question"`
		K               *int    `json:"k"`
		MaxContextChars *int    `json:"max_context_chars"`
		System          *string `json:"system"`
		Citations       *bool   `json:"citations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Question == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Question is required", http.StatusBadRequest)
		return
	}

	res, err := h.answerer.Answer(r.Context(), req.Question, answer.Options{
		K:               req.K,
		MaxContextChars: req.MaxContextChars,
		System:          req.System,
		Citations:       req.Citations,
	})
	if err != nil {
		if errors.Is(err, answer.ErrEmptyQuery) || errors.Is(err, retrieval.ErrEmptyQuery) {
			h.writeError(r.Context(), w, "VALIDATION_ERROR", "Question is required", http.StatusBadRequest)
			return
		}
		if errors.Is(err, llm.ErrCall) {
			slog.Error("LLM transport failed", "error", err)
			h.writeError(r.Context(), w, "UPSTREAM_ERROR", "LLM unavailable", http.StatusBadGateway)
			return
		}
		slog.Error("answer failed", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": res}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
