// Package main runs the manual copilot MCP server over stdio.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bull/manual-copilot/internal/config"
	"github.com/bull/manual-copilot/internal/embedding"
	"github.com/bull/manual-copilot/internal/index"
	"github.com/bull/manual-copilot/internal/manuals"
	mcpserver "github.com/bull/manual-copilot/internal/mcp"
	"github.com/bull/manual-copilot/internal/retrieval"
)

func main() {
	_ = godotenv.Load()

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

	server := mcpserver.NewServer(&mcpserver.Config{
		Retriever: retrieval.NewMerger(ix, nil),
		Registry:  registry,
		Units:     ix,
	})

	log.Println("Starting Manual Copilot MCP server (stdio mode)...")
	if err := server.Run(ctx); err != nil {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
}
