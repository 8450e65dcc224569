// ABOUTME: OpenAI client for embeddings and chat completions with retry logic
// ABOUTME: The single boundary to the external completion and embedding capability
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docchat-labs/docchat/internal/util"
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey     string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultChatModel is the default model for chat completions
const DefaultChatModel = "gpt-4o-mini"

// Client wraps the OpenAI API client with retry and per-attempt timeouts
type Client struct {
	client     *openai.Client
	chatModel  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new OpenAI client
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return &Client{
		client:     openai.NewClient(cfg.APIKey),
		chatModel:  cfg.ChatModel,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// ChatModel returns the configured chat completion model
func (c *Client) ChatModel() string {
	return c.chatModel
}

// EmbedText generates an embedding vector for text using the given model.
// The raw provider vector is returned as float64; normalization is the
// embedding provider's concern.
func (c *Client) EmbedText(ctx context.Context, text string, model openai.EmbeddingModel) ([]float64, error) {
	var vector []float64

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(attemptCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: model,
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("no embeddings returned")
		}

		embedding32 := resp.Data[0].Embedding
		vector = make([]float64, len(embedding32))
		for i, v := range embedding32 {
			vector[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generating embedding: %w", err)
	}

	return vector, nil
}

// Complete sends the ordered message list to the chat completion endpoint
// and returns the single response text.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (string, error) {
	var answer string

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model:       c.chatModel,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no completion choices returned")
		}

		answer = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}

	return answer, nil
}
