package ingest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feature "clarifile/features/ingest"
	"clarifile/internal/ingest"
)

type stubIngester struct {
	report   *ingest.Report
	err      error
	gotURLs  []string
	gotPaths []string
}

func (s *stubIngester) IngestURLs(_ context.Context, urls []string) (*ingest.Report, error) {
	s.gotURLs = urls
	return s.report, s.err
}

func (s *stubIngester) IngestFiles(_ context.Context, paths []string) (*ingest.Report, error) {
	s.gotPaths = paths
	return s.report, s.err
}

func TestIngestURLs(t *testing.T) {
	ingester := &stubIngester{report: &ingest.Report{Sources: []ingest.SourceResult{
		{Source: "example-com-intro", Outcome: ingest.OutcomeIngested, Chunks: 3},
	}}}
	handler := feature.NewHandler(ingester, t.TempDir(), 50)

	body := `{"urls": ["https://example.com/intro", "  ", "https://example.com/faq"]}`
	req := httptest.NewRequest("POST", "/ingest/urls", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.IngestURLs(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"https://example.com/intro", "https://example.com/faq"}, ingester.gotURLs)

	var resp struct {
		Data struct {
			Sources []ingest.SourceResult `json:"sources"`
		} `json:"data"`
		Meta map[string]int `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Sources, 1)
	assert.Equal(t, ingest.OutcomeIngested, resp.Data.Sources[0].Outcome)
	assert.Equal(t, 3, resp.Meta["chunks"])
}

func TestIngestURLs_Empty(t *testing.T) {
	handler := feature.NewHandler(&stubIngester{}, t.TempDir(), 50)

	req := httptest.NewRequest("POST", "/ingest/urls", strings.NewReader(`{"urls": []}`))
	w := httptest.NewRecorder()

	handler.IngestURLs(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestURLs_InvalidJSON(t *testing.T) {
	handler := feature.NewHandler(&stubIngester{}, t.TempDir(), 50)

	req := httptest.NewRequest("POST", "/ingest/urls", strings.NewReader(`not json`))
	w := httptest.NewRecorder()

	handler.IngestURLs(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartBody(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake content"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestIngestFiles(t *testing.T) {
	uploadDir := t.TempDir()
	ingester := &stubIngester{report: &ingest.Report{Sources: []ingest.SourceResult{
		{Source: "manual.pdf", Outcome: ingest.OutcomeIngested, Chunks: 2},
	}}}
	handler := feature.NewHandler(ingester, uploadDir, 50)

	body, contentType := multipartBody(t, "manual.pdf")
	req := httptest.NewRequest("POST", "/ingest/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.IngestFiles(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ingester.gotPaths, 1)
	assert.Contains(t, ingester.gotPaths[0], "manual.pdf")

	// Saved under the upload dir with the original content.
	saved, err := os.ReadFile(ingester.gotPaths[0])
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake content", string(saved))
}

func TestIngestFiles_UnsupportedType(t *testing.T) {
	handler := feature.NewHandler(&stubIngester{}, t.TempDir(), 50)

	body, contentType := multipartBody(t, "notes.txt")
	req := httptest.NewRequest("POST", "/ingest/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.IngestFiles(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestFiles_NoFiles(t *testing.T) {
	handler := feature.NewHandler(&stubIngester{}, t.TempDir(), 50)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/ingest/files", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	handler.IngestFiles(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
