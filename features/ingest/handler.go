package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"clarifile/internal/ingest"
	"clarifile/internal/middleware"
)

// Ingester feeds sources into the knowledge base.
type Ingester interface {
	IngestURLs(ctx context.Context, urls []string) (*ingest.Report, error)
	IngestFiles(ctx context.Context, paths []string) (*ingest.Report, error)
}

type Handler struct {
	ingester      Ingester
	uploadDir     string
	maxUploadSize int64
}

func NewHandler(ingester Ingester, uploadDir string, maxUploadMB int) *Handler {
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &Handler{
		ingester:      ingester,
		uploadDir:     uploadDir,
		maxUploadSize: int64(maxUploadMB) << 20,
	}
}

func (h *Handler) IngestURLs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	urls := make([]string, 0, len(req.URLs))
	for _, u := range req.URLs {
		if strings.TrimSpace(u) != "" {
			urls = append(urls, strings.TrimSpace(u))
		}
	}
	if len(urls) == 0 {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "At least one URL is required", http.StatusBadRequest)
		return
	}

	report, err := h.ingester.IngestURLs(r.Context(), urls)
	if err != nil {
		slog.Error("url ingestion failed", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.writeReport(w, report)
}

func (h *Handler) IngestFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "File too large", http.StatusBadRequest)
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		h.writeError(r.Context(), w, "BAD_REQUEST", "At least one file is required", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		slog.Error("failed to create upload directory", "error", err, "path", filepath.Clean(h.uploadDir))
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to create upload directory", http.StatusInternalServerError)
		return
	}

	var paths []string
	for _, header := range r.MultipartForm.File["files"] {
		if filepath.Ext(header.Filename) != ".pdf" {
			h.writeError(r.Context(), w, "BAD_REQUEST", "Unsupported file type", http.StatusBadRequest)
			return
		}

		path, err := h.saveUpload(header)
		if err != nil {
			slog.Error("failed to save upload", "error", err)
			h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to save file", http.StatusInternalServerError)
			return
		}
		paths = append(paths, path)
	}

	report, err := h.ingester.IngestFiles(r.Context(), paths)
	if err != nil {
		slog.Error("file ingestion failed", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.writeReport(w, report)
}

func (h *Handler) saveUpload(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	filename := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(header.Filename))
	path := filepath.Clean(filepath.Join(h.uploadDir, filename))

	dst, err := os.Create(path) // #nosec G304 -- path is built from a UUID plus sanitized basename
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func (h *Handler) writeReport(w http.ResponseWriter, report *ingest.Report) {
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": report,
		"meta": map[string]int{
			"sources": len(report.Sources),
			"chunks":  report.TotalChunks(),
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
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
