// Package main provides the copilot CLI for managing the manual index
// without going through the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/manual-copilot/internal/config"
	"github.com/bull/manual-copilot/internal/embedding"
	"github.com/bull/manual-copilot/internal/index"
	"github.com/bull/manual-copilot/internal/manuals"
)

var description string

var rootCmd = &cobra.Command{
	Use:   "copilot",
	Short: "Equipment manual index management tool",
	Long: `CLI for managing the equipment manual vector index in Qdrant.

Environment variables:
  QDRANT_HOST      Qdrant hostname (default: localhost)
  QDRANT_PORT      Qdrant gRPC port (default: 6334)
  PDF_STORAGE_DIR  Where uploaded PDFs and metadata live (default: ./data/pdfs)
  OPENAI_API_KEY   OpenAI API key for embeddings (required)`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <unit-number> <pdf-file>",
	Short: "Extract, chunk and index a manual for a unit",
	Args:  cobra.ExactArgs(2),
	RunE:  runIngest,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <unit-number>",
	Short: "Remove a unit's manual, metadata and vector index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered manuals and indexed units",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	ingestCmd.Flags().StringVarP(&description, "description", "d", "", "free-form manual description")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps wires the registry, pipeline and index for one command run.
type deps struct {
	registry *manuals.Registry
	pipeline *manuals.Pipeline
	index    *index.Index
}

func setup() (*deps, error) {
	cfg := config.FromEnv()

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0)

	ix, err := index.New(cfg.QdrantHost, cfg.QdrantPort, embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	registry, err := manuals.NewRegistry(cfg.StorageDir)
	if err != nil {
		ix.Close()
		return nil, fmt.Errorf("failed to open manual registry: %w", err)
	}

	return &deps{
		registry: registry,
		pipeline: manuals.NewPipeline(registry, ix, nil),
		index:    ix,
	}, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	unitNumber, pdfPath := args[0], args[1]

	d, err := setup()
	if err != nil {
		return err
	}
	defer d.index.Close()

	f, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	fmt.Printf("Ingesting %s for unit %s...\n", pdfPath, unitNumber)
	result, err := d.pipeline.Ingest(context.Background(), unitNumber, filepath.Base(pdfPath), description, f)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Unit:     %s\n", result.Manual.UnitNumber)
	fmt.Printf("  Pages:    %d\n", result.Manual.PageCount)
	fmt.Printf("  Chunks:   %d\n", result.ChunkCount)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	d, err := setup()
	if err != nil {
		return err
	}
	defer d.index.Close()

	if err := d.pipeline.Remove(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("Deleted unit %s\n", args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	d, err := setup()
	if err != nil {
		return err
	}
	defer d.index.Close()

	list, err := d.registry.List()
	if err != nil {
		return err
	}
	indexed, err := d.index.ListUnits(context.Background())
	if err != nil {
		return err
	}
	indexedSet := make(map[string]struct{}, len(indexed))
	for _, unit := range indexed {
		indexedSet[unit] = struct{}{}
	}

	if len(list) == 0 {
		fmt.Println("No manuals registered.")
		return nil
	}
	for _, m := range list {
		status := "indexed"
		if _, ok := indexedSet[m.UnitNumber]; !ok {
			status = "NOT INDEXED"
		}
		fmt.Printf("  %-12s %-30s %4d pages  [%s]\n", m.UnitNumber, m.Filename, m.PageCount, status)
	}
	return nil
}
