// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
)

// Config holds everything the entry points need to wire the services.
type Config struct {
	QdrantHost string // QDRANT_HOST, default localhost
	QdrantPort int    // QDRANT_PORT, default 6334 (gRPC)
	Port       string // PORT, HTTP listen port, default 8080
	StorageDir string // PDF_STORAGE_DIR, default ./data/pdfs
	ChatModel  string // CHAT_MODEL, empty selects the chat package default
}

// FromEnv builds a Config from environment variables, applying defaults
// for anything unset. OPENAI_API_KEY is read by the embedding client
// itself, not here.
func FromEnv() *Config {
	return &Config{
		QdrantHost: getEnv("QDRANT_HOST", "localhost"),
		QdrantPort: getEnvInt("QDRANT_PORT", 6334),
		Port:       getEnv("PORT", "8080"),
		StorageDir: getEnv("PDF_STORAGE_DIR", "./data/pdfs"),
		ChatModel:  getEnv("CHAT_MODEL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
