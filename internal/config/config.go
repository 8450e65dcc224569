// ABOUTME: Centralized configuration for the docchat agent
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the document chat agent
type Config struct {
	// Corpus settings
	DocsDir       string
	DataDir       string
	TopK          int
	ChunkSize     int
	ChunkOverlap  int
	MinChunkChars int

	// OpenAI settings
	OpenAIKey       string
	ChatModel       string
	EmbeddingModels []string
	MaxTokens       int
	Temperature     float32
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration

	// Conversation memory settings
	HistoryWindow   int
	SummaryInterval int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		DocsDir:         getEnv("DOCCHAT_DOCS_DIR", "documents"),
		DataDir:         getEnv("DOCCHAT_DATA_DIR", defaultDataDir()),
		TopK:            getEnvInt("DOCCHAT_TOP_K", 3),
		ChunkSize:       getEnvInt("DOCCHAT_CHUNK_SIZE", 800),
		ChunkOverlap:    getEnvInt("DOCCHAT_CHUNK_OVERLAP", 150),
		MinChunkChars:   getEnvInt("DOCCHAT_MIN_CHUNK_CHARS", 50),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		ChatModel:       getEnv("DOCCHAT_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModels: getEnvList("DOCCHAT_EMBEDDING_MODELS", defaultEmbeddingModels()),
		MaxTokens:       getEnvInt("DOCCHAT_MAX_TOKENS", 1000),
		Temperature:     float32(getEnvFloat("DOCCHAT_TEMPERATURE", 0.7)),
		Timeout:         getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:      getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		HistoryWindow:   getEnvInt("DOCCHAT_HISTORY_WINDOW", 20),
		SummaryInterval: getEnvInt("DOCCHAT_SUMMARY_INTERVAL", 20),
	}

	return cfg, cfg.Validate()
}

// Validate checks configuration invariants. Chunk overlap must stay below
// chunk size or the chunker's step size becomes non-positive.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("DOCCHAT_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("DOCCHAT_CHUNK_OVERLAP must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("DOCCHAT_TOP_K must be positive, got %d", c.TopK)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("DOCCHAT_HISTORY_WINDOW must be positive, got %d", c.HistoryWindow)
	}
	if c.SummaryInterval <= 0 {
		return fmt.Errorf("DOCCHAT_SUMMARY_INTERVAL must be positive, got %d", c.SummaryInterval)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if len(c.EmbeddingModels) == 0 {
		return fmt.Errorf("DOCCHAT_EMBEDDING_MODELS must name at least one candidate")
	}
	return nil
}

// IndexPath returns the SQLite database path for the document index
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, "index.db")
}

// defaultEmbeddingModels lists candidate models in order of preferred
// retrieval quality. The provider tries each in turn at startup.
func defaultEmbeddingModels() []string {
	return []string{
		"text-embedding-3-large",
		"text-embedding-3-small",
		"text-embedding-ada-002",
	}
}

// defaultDataDir returns the XDG-compliant default index directory
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "docchat")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "docchat")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
