package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// Kind is the resolved content kind of a fetched URL.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindHTML Kind = "html"
	KindJSON Kind = "json"
	KindText Kind = "text"
	KindNone Kind = ""
)

// KindFromContentType maps an HTTP Content-Type header to a content kind.
// Anything that is not pdf, html, json or text resolves to KindNone.
func KindFromContentType(contentType string) Kind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "pdf"):
		return KindPDF
	case strings.Contains(ct, "html"):
		return KindHTML
	case strings.Contains(ct, "json"):
		return KindJSON
	case strings.HasPrefix(ct, "text/"):
		return KindText
	default:
		return KindNone
	}
}

// URL fetches a URL and extracts plain text according to the response's
// content kind: PDFs go through the PDF extractor, HTML is reduced to its
// visible text, JSON is re-serialized with indentation, other text types pass
// through verbatim, and unrecognized types yield empty text without error.
func URL(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to load URL %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to load URL %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to load URL %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to load URL %s: %w", url, err)
	}

	switch KindFromContentType(resp.Header.Get("Content-Type")) {
	case KindPDF:
		return PDF(url, bytes.NewReader(body), int64(len(body)))
	case KindHTML:
		return HTMLText(bytes.NewReader(body))
	case KindJSON:
		return jsonText(body), nil
	case KindText:
		return string(body), nil
	default:
		return "", nil
	}
}

// HTMLText strips markup and returns the document's visible text, joining
// text nodes with single spaces. Script and style contents are skipped.
func HTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, " "), nil
}

// jsonText pretty-prints a JSON payload. Payloads that fail to parse are
// returned as-is rather than dropped.
func jsonText(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}
