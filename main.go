package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"clarifile/features/ask"
	ingestfeature "clarifile/features/ingest"
	"clarifile/features/stats"
	"clarifile/internal/adapter/gemini"
	"clarifile/internal/adapter/ollama"
	"clarifile/internal/adapter/openai"
	"clarifile/internal/answer"
	"clarifile/internal/config"
	"clarifile/internal/ingest"
	"clarifile/internal/llm"
	"clarifile/internal/logger"
	"clarifile/internal/middleware"
	"clarifile/internal/retrieval"
	"clarifile/internal/vector"
)

func main() {
	// Initialize structured logger
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Embedder
	embedder, cleanup, err := buildEmbedder(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to create embedder", "error", err, "provider", cfg.EmbedProvider)
		os.Exit(1)
	}
	defer cleanup()

	// 3. Vector Store
	store, err := vector.NewStore(cfg.StorePath, embedder)
	if err != nil {
		slog.Error("failed to open vector store", "error", err, "path", cfg.StorePath)
		os.Exit(1)
	}

	// 4. LLM Gateway. A cloud key selects the cloud transport, otherwise
	// the local daemon is used.
	var transport llm.Generator
	if cfg.OpenAIAPIKey != "" {
		cloud := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.CloudLLMTimeout)
		transport = llm.NewCloudTransport(cloud, cfg.Persona)
		slog.Info("using cloud LLM transport", "model", cfg.OpenAIModel)
	} else {
		local := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel, cfg.LocalLLMTimeout)
		transport = llm.NewLocalTransport(local, cfg.Persona)
		slog.Info("using local LLM transport", "model", cfg.OllamaModel, "url", cfg.OllamaURL)
	}
	gateway := llm.NewGateway(transport)

	// 5. Services
	coordinator := ingest.NewCoordinator(store, ingest.Config{
		Collection:   cfg.Collection,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		OnConflict:   ingest.ConflictPolicy(cfg.IngestOnConflict),
		FetchTimeout: cfg.FetchTimeout,
	})

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(store, cfg.Collection, queryLogger)

	answerService := answer.NewService(retrievalService, gateway, cfg.MaxContextChars, "", log)

	// 6. Handlers & Routes
	askHandler := ask.NewHandler(answerService)
	ingestHandler := ingestfeature.NewHandler(coordinator, cfg.UploadDir, int(cfg.MaxUploadSizeMB))
	statsHandler := stats.NewHandler(store, cfg.Collection)

	http.Handle("POST /ask", middleware.CorrelationID(middleware.CORS(askHandler.Ask)))
	http.Handle("POST /ingest/urls", middleware.CorrelationID(middleware.CORS(ingestHandler.IngestURLs)))
	http.Handle("POST /ingest/files", middleware.CorrelationID(middleware.CORS(ingestHandler.IngestFiles)))
	http.Handle("GET /stats", middleware.CorrelationID(middleware.CORS(statsHandler.GetStats)))

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// 7. Start Server
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	slog.Info("server starting", "port", cfg.ServerPort, "collection", cfg.Collection)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// buildEmbedder wires the embedding backend named by EMBED_PROVIDER. The
// returned cleanup closes any underlying client connection.
func buildEmbedder(ctx context.Context, cfg *config.Config) (vector.Embedder, func(), error) {
	switch cfg.EmbedProvider {
	case "openai":
		client := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.CloudLLMTimeout)
		client.SetEmbedModel(cfg.EmbedModelOrDefault())
		return client, func() {}, nil
	case "gemini":
		embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModelOrDefault())
		if err != nil {
			return nil, nil, err
		}
		return embedder, func() {
			if err := embedder.Close(); err != nil {
				slog.Warn("failed to close gemini client", "error", err)
			}
		}, nil
	default:
		client := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel, cfg.LocalLLMTimeout)
		client.SetEmbedModel(cfg.EmbedModelOrDefault())
		return client, func() {}, nil
	}
}
