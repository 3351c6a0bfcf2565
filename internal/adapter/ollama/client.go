package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrEmptyResponse = errors.New("empty response from model")

// Client talks to a local Ollama daemon.
type Client struct {
	baseURL    string
	model      string
	embedModel string
	client     *http.Client
}

func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 180 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		embedModel: model,
		client:     &http.Client{Timeout: timeout},
	}
}

// SetEmbedModel selects a dedicated embedding model for Embed calls.
func (c *Client) SetEmbedModel(model string) {
	c.embedModel = model
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends a non-streaming generation request and returns the daemon's
// response object. An empty response text is reported as ErrEmptyResponse.
func (c *Client) Generate(ctx context.Context, prompt string) (*GenerateResponse, error) {
	reqBody := GenerateRequest{Model: c.model, Prompt: prompt, Stream: false}
	jsonBody, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("ollama api error: %d", resp.StatusCode)
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama generate: decoding response: %w", err)
	}
	if result.Response == "" {
		return nil, ErrEmptyResponse
	}
	return &result, nil
}

// Embed returns an embedding vector from the daemon's embeddings endpoint.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := map[string]string{"model": c.embedModel, "prompt": text}
	jsonBody, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("ollama api error: %d", resp.StatusCode)
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama embeddings: decoding response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embeddings: %w", ErrEmptyResponse)
	}
	return result.Embedding, nil
}
