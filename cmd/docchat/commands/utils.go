// ABOUTME: Shared wiring for CLI commands
// ABOUTME: Builds the agent and its collaborators from environment configuration
package commands

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/docchat-labs/docchat/internal/agent"
	"github.com/docchat-labs/docchat/internal/config"
	"github.com/docchat-labs/docchat/internal/embedding"
	"github.com/docchat-labs/docchat/internal/extract"
	"github.com/docchat-labs/docchat/internal/index"
	"github.com/docchat-labs/docchat/internal/llm"
	"github.com/docchat-labs/docchat/internal/memory"
	"github.com/docchat-labs/docchat/internal/retriever"
)

// buildAgent wires the full pipeline: config, LLM client, embedding
// provider, index, retriever, memory, and loader. The returned cleanup
// closes the index database. docsDir overrides the configured corpus
// directory when non-empty. rebuild opens the index for re-ingestion,
// dropping stored chunks even when the embedding model changed.
func buildAgent(ctx context.Context, docsDir string, rebuild bool) (*agent.Agent, func(), error) {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if docsDir != "" {
		cfg.DocsDir = docsDir
	}

	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:     cfg.OpenAIKey,
		ChatModel:  cfg.ChatModel,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}

	provider := embedding.NewProvider(ctx, client, cfg.EmbeddingModels)
	if verbose {
		if provider.Available() {
			log.Printf("Embedding model: %s (%d dimensions)", provider.ModelName(), provider.Dimension())
		} else {
			log.Printf("No embedding model available, falling back to lexical retrieval")
		}
	}

	var idx *index.Index
	if rebuild {
		idx, err = index.OpenRebuild(cfg.IndexPath(), provider.Dimension())
	} else {
		idx, err = index.Open(cfg.IndexPath(), provider.Dimension())
	}
	if err != nil {
		if errors.Is(err, index.ErrDimensionMismatch) || errors.Is(err, index.ErrModeViolation) {
			return nil, nil, fmt.Errorf("opening document index: %w; run \"docchat ingest --rebuild\" to re-ingest with the current embedding model", err)
		}
		return nil, nil, fmt.Errorf("opening document index: %w", err)
	}

	ret := retriever.New(provider, idx, cfg.TopK)
	mem := memory.New(client, cfg.HistoryWindow, cfg.SummaryInterval)

	qa, err := agent.New(cfg, client, provider, idx, ret, mem, extract.NewLoader())
	if err != nil {
		_ = idx.Close()
		return nil, nil, err
	}

	cleanup := func() { _ = idx.Close() }
	return qa, cleanup, nil
}
