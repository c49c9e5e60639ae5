// Package main runs the equipment manual copilot HTTP API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bull/manual-copilot/internal/chat"
	"github.com/bull/manual-copilot/internal/config"
	"github.com/bull/manual-copilot/internal/embedding"
	"github.com/bull/manual-copilot/internal/index"
	"github.com/bull/manual-copilot/internal/manuals"
	"github.com/bull/manual-copilot/internal/retrieval"
	"github.com/bull/manual-copilot/internal/server"
)

func main() {
	// Load .env if present (local development), ignore if missing.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.FromEnv()

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0)

	ix, err := index.New(cfg.QdrantHost, cfg.QdrantPort, embedder)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer ix.Close()

	registry, err := manuals.NewRegistry(cfg.StorageDir)
	if err != nil {
		log.Fatalf("failed to open manual registry: %v", err)
	}

	pipeline := manuals.NewPipeline(registry, ix, nil)
	merger := retrieval.NewMerger(ix, nil)
	chatSvc := chat.NewService(merger, embeddingClient.Client(), cfg.ChatModel, nil)

	srv := server.New(registry, pipeline, chatSvc, ix, nil)
	httpServer := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: srv.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting HTTP server on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server error: %v", err)
	}
}
