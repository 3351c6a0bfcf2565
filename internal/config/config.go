package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	// Vector store
	StorePath  string `envconfig:"STORE_PATH" default:"storage"`
	Collection string `envconfig:"COLLECTION" default:"docs"`

	// Chunking
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1200"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	// What to do when an ingested chunk already exists: skip, replace or fail.
	IngestOnConflict string `envconfig:"INGEST_ON_CONFLICT" default:"skip"`

	// Answering
	MaxContextChars int    `envconfig:"MAX_CONTEXT_CHARS" default:"6000"`
	Persona         string `envconfig:"PERSONA" default:"You are a careful assistant that answers questions about ingested documents."`

	// LLM transports. An OpenAI key selects the cloud transport,
	// otherwise the local Ollama daemon is used.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OllamaURL    string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	OllamaModel  string `envconfig:"OLLAMA_MODEL" default:"llama3.1"`

	// Embeddings
	EmbedProvider string `envconfig:"EMBED_PROVIDER" default:"ollama"` // ollama, openai, gemini
	EmbedModel    string `envconfig:"EMBED_MODEL"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`

	// Timeouts
	FetchTimeout    time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	CloudLLMTimeout time.Duration `envconfig:"CLOUD_LLM_TIMEOUT" default:"60s"`
	LocalLLMTimeout time.Duration `envconfig:"LOCAL_LLM_TIMEOUT" default:"180s"`

	// Server
	ServerPort      int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath    string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`
	MaxUploadSizeMB int64  `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`
	UploadDir       string `envconfig:"UPLOAD_DIR" default:"./uploads"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root.
	// Ignore errors, as env vars might be set in the shell.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("%w: STORE_PATH", ErrMissingRequired)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: COLLECTION", ErrMissingRequired)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkSize <= c.ChunkOverlap {
		return fmt.Errorf("CHUNK_SIZE (%d) must be greater than CHUNK_OVERLAP (%d)", c.ChunkSize, c.ChunkOverlap)
	}
	switch c.IngestOnConflict {
	case "skip", "replace", "fail":
	default:
		return fmt.Errorf("unknown INGEST_ON_CONFLICT %q", c.IngestOnConflict)
	}
	switch c.EmbedProvider {
	case "ollama", "openai", "gemini":
	default:
		return fmt.Errorf("unknown EMBED_PROVIDER %q", c.EmbedProvider)
	}
	if c.EmbedProvider == "openai" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY (required for openai embeddings)", ErrMissingRequired)
	}
	if c.EmbedProvider == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY (required for gemini embeddings)", ErrMissingRequired)
	}
	return nil
}

// EmbedModelOrDefault returns the configured embedding model, falling back to
// the provider's conventional default.
func (c *Config) EmbedModelOrDefault() string {
	if c.EmbedModel != "" {
		return c.EmbedModel
	}
	switch c.EmbedProvider {
	case "openai":
		return "text-embedding-3-small"
	case "gemini":
		return "gemini-embedding-001"
	default:
		return "nomic-embed-text"
	}
}
