package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/talktuber/talktuber/internal/adapter/ai"
	"github.com/talktuber/talktuber/internal/adapter/store"
	"github.com/talktuber/talktuber/internal/adapter/youtube"
	"github.com/talktuber/talktuber/internal/handler"
	"github.com/talktuber/talktuber/internal/middleware"
	"github.com/talktuber/talktuber/internal/service"
	"github.com/talktuber/talktuber/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("🚀 Starting TalkTuber API",
		"port", cfg.Port,
		"ollama_embed", cfg.OllamaEmbedURL,
		"ollama_chat", cfg.OllamaChatURL,
		"chunk_size", cfg.ChunkSize,
		"retrieval_k", cfg.RetrievalK,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if err := pgStore.EnsureSchema(context.Background(), cfg.EmbeddingDimension); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	vectorStore := store.NewVectorStore(pgStore, cfg.EmbeddingDimension)

	// ── Adapters ─────────────────────────────────────────────────────────
	ollamaAI := ai.NewOllamaProvider(
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaEmbedURL,
			Model:   cfg.OllamaEmbedModel,
			Token:   cfg.OllamaEmbedToken,
		},
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaChatURL,
			Model:   cfg.OllamaChatModel,
			Token:   cfg.OllamaChatToken,
		},
	)
	captions := youtube.NewClient(cfg.CaptionsBaseURL)

	// ── Services ─────────────────────────────────────────────────────────
	chunker, err := service.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		slog.Error("invalid chunker configuration", "error", err)
		os.Exit(1)
	}

	transcripts := service.NewTranscriptService(captions)
	translator := service.NewTranslator(ollamaAI, cfg.TranslationChunkSize, cfg.TranslationRPS)
	indexer := service.NewIndexer(ollamaAI, pgStore, vectorStore)
	pipeline := service.NewPipeline(transcripts, translator, chunker, indexer)
	ragService := service.NewRAGService(ollamaAI, pgStore, vectorStore, service.RAGConfig{
		SearchK:         cfg.RetrievalK,
		Temperature:     cfg.ChatTemperature,
		CompressContext: cfg.CompressContext,
	})

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// ── Routes ───────────────────────────────────────────────────────────
	videoHandler := handler.NewVideoHandler(pipeline, ragService, cfg.AppName)
	videoHandler.Register(app)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
