// Package server exposes the manual upload, chat and health endpoints
// over HTTP. It is a thin boundary; retrieval and ingestion policy live
// in the packages it delegates to.
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bull/manual-copilot/internal/chat"
	"github.com/bull/manual-copilot/internal/index"
	"github.com/bull/manual-copilot/internal/manuals"
)

// Ingestor drives manual ingestion and removal. Implemented by
// manuals.Pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, unitNumber, filename, description string, content io.Reader) (*manuals.IngestResult, error)
	Remove(ctx context.Context, unitNumber string) error
}

// ChatService answers chat turns. Implemented by chat.Service.
type ChatService interface {
	Chat(ctx context.Context, message string, history []chat.Message) (string, []index.ChunkRecord, error)
}

// HealthChecker reports vector store connectivity. Implemented by
// index.Index.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server is the HTTP API.
type Server struct {
	router   *gin.Engine
	registry *manuals.Registry
	pipeline Ingestor
	chat     ChatService
	health   HealthChecker
	logger   *slog.Logger
}

// New builds the router with all routes registered.
func New(registry *manuals.Registry, pipeline Ingestor, chatSvc ChatService, health HealthChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:   gin.Default(),
		registry: registry,
		pipeline: pipeline,
		chat:     chatSvc,
		health:   health,
		logger:   logger,
	}
	s.router.Use(cors.Default())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/manuals", s.handleListManuals)
	api.POST("/manuals", s.handleUploadManual)
	api.GET("/manuals/:unit", s.handleGetManual)
	api.GET("/manuals/:unit/download", s.handleDownloadManual)
	api.DELETE("/manuals/:unit", s.handleDeleteManual)
	api.POST("/chat", s.handleChat)
}

// Router returns the handler for an http.Server.
func (s *Server) Router() http.Handler {
	return s.router
}
