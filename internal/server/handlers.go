package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bull/manual-copilot/internal/chat"
	"github.com/bull/manual-copilot/internal/index"
	"github.com/bull/manual-copilot/internal/manuals"
)

type chatRequest struct {
	Message string         `json:"message" binding:"required"`
	History []chat.Message `json:"history"`
}

type chatResponse struct {
	Answer  string              `json:"answer"`
	Sources []index.ChunkRecord `json:"sources"`
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	resp := gin.H{
		"status":    "healthy",
		"qdrant":    "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.health.Health(ctx); err != nil {
		status = http.StatusServiceUnavailable
		resp["status"] = "unhealthy"
		resp["qdrant"] = "disconnected"
	}
	c.JSON(status, resp)
}

func (s *Server) handleListManuals(c *gin.Context) {
	list, err := s.registry.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"manuals": list})
}

func (s *Server) handleUploadManual(c *gin.Context) {
	unitNumber := c.PostForm("unit_number")
	description := c.PostForm("description")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := s.pipeline.Ingest(c.Request.Context(), unitNumber, fileHeader.Filename, description, file)
	switch {
	case errors.Is(err, manuals.ErrEmptyUnit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, manuals.ErrUnitExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		s.logger.Error("ingestion failed", "unit", unitNumber, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PDF processing failed: " + err.Error()})
	default:
		c.JSON(http.StatusCreated, result.Manual)
	}
}

func (s *Server) handleGetManual(c *gin.Context) {
	// The registry is keyed by normalized ids; accept raw ones here.
	m, err := s.registry.Get(string(index.NormalizeUnit(c.Param("unit"))))
	if errors.Is(err, manuals.ErrManualNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "manual not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleDownloadManual(c *gin.Context) {
	unit := string(index.NormalizeUnit(c.Param("unit")))
	m, err := s.registry.Get(unit)
	if errors.Is(err, manuals.ErrManualNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "manual not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.FileAttachment(s.registry.PDFPath(unit), m.Filename)
}

func (s *Server) handleDeleteManual(c *gin.Context) {
	err := s.pipeline.Remove(c.Request.Context(), c.Param("unit"))
	if errors.Is(err, manuals.ErrManualNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "manual not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, sources, err := s.chat.Chat(c.Request.Context(), req.Message, req.History)
	if err != nil {
		s.logger.Error("chat turn failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chatResponse{Answer: answer, Sources: sources})
}
