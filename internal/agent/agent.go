// ABOUTME: Agent orchestrates ingestion, retrieval, context assembly, and completion
// ABOUTME: Constrains the model to retrieved document context and records exchanges into memory
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/docchat-labs/docchat/internal/chunker"
	"github.com/docchat-labs/docchat/internal/config"
	"github.com/docchat-labs/docchat/internal/index"
	"github.com/docchat-labs/docchat/internal/memory"
	"github.com/docchat-labs/docchat/internal/models"
)

// RefusalMessage is the fixed response when the retrieved context does not
// contain the answer. The system prompt instructs the model to emit it
// verbatim.
const RefusalMessage = "Information unavailable at the moment."

const systemPrompt = `You are a document assistant that ONLY answers questions based on the provided document context.

STRICT RULES:
1. ONLY use information from the provided documents
2. If information is NOT in the provided documents, respond with: "` + RefusalMessage + `"
3. Do NOT provide any external knowledge or general information
4. Do NOT answer questions unrelated to the document corpus
5. Always cite the specific document source when providing information

You have access to:
1. Document excerpts retrieved for the current question (provided as context)
2. Conversation history (previous questions and answers in this chat)

For questions about the conversation itself (like "when did we discuss X?" or "what did you say about Y?"), refer to the conversation history.

Stay strictly within the bounds of the provided documents.`

// Completer is the slice of the LLM client the agent needs.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (string, error)
}

// Provider is the slice of the embedding provider the agent needs.
type Provider interface {
	Available() bool
	Dimension() int
	ModelName() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Store is the slice of the document index the agent needs.
type Store interface {
	Count() (int, error)
	Upsert(entries []index.Entry) error
	VectorMode() bool
	Clear() error
}

// Searcher is the retrieval interface the agent composes answers from.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]models.RetrievalResult, error)
}

// Loader is the corpus extraction collaborator.
type Loader interface {
	LoadDirectory(ctx context.Context, dir string) ([]models.Document, error)
}

// Agent is the session-scoped orchestrator. One instance owns the
// document index, embedding provider, and conversation memory for its
// lifetime; requests are processed one at a time.
type Agent struct {
	cfg       *config.Config
	completer Completer
	provider  Provider
	store     Store
	searcher  Searcher
	memory    *memory.Memory
	loader    Loader
	chunker   *chunker.Chunker
	sessionID string

	mu          sync.Mutex
	initialized bool
}

// New creates an Agent from its collaborators. The chunker is built from
// the config, so invalid chunk parameters are rejected here.
func New(cfg *config.Config, completer Completer, provider Provider, store Store, searcher Searcher, mem *memory.Memory, loader Loader) (*Agent, error) {
	ck, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap, cfg.MinChunkChars)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking configuration: %w", err)
	}

	return &Agent{
		cfg:       cfg,
		completer: completer,
		provider:  provider,
		store:     store,
		searcher:  searcher,
		memory:    mem,
		loader:    loader,
		chunker:   ck,
		sessionID: uuid.New().String()[:8],
	}, nil
}

// Initialize ingests the corpus if the index is empty. Idempotent and safe
// to call repeatedly: a non-empty index is a warm start and ingestion is
// skipped to avoid recomputing embeddings.
func (a *Agent) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}

	count, err := a.store.Count()
	if err != nil {
		return fmt.Errorf("checking index: %w", err)
	}
	if count > 0 {
		log.Printf("[session %s] index already holds %d chunks, skipping ingestion", a.sessionID, count)
		a.initialized = true
		return nil
	}

	docs, err := a.loader.LoadDirectory(ctx, a.cfg.DocsDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no readable documents found in %s", a.cfg.DocsDir)
	}

	total := 0
	for _, doc := range docs {
		chunks := a.chunker.ChunkDocument(doc)
		entries := make([]index.Entry, 0, len(chunks))

		for _, chunk := range chunks {
			entry := index.Entry{Chunk: chunk}
			if a.provider.Available() {
				// A chunk without a vector would violate the index's
				// mode invariant, so an embedding failure here is fatal
				// for the whole ingestion, not silently skipped.
				vector, err := a.provider.Embed(ctx, chunk.Text)
				if err != nil {
					return fmt.Errorf("embedding chunk %s: %w", chunk.ID, err)
				}
				entry.Vector = vector
			}
			entries = append(entries, entry)
		}

		if err := a.store.Upsert(entries); err != nil {
			return fmt.Errorf("indexing %s: %w", doc.Filename, err)
		}
		total += len(entries)
	}

	log.Printf("[session %s] ingested %d documents into %d chunks", a.sessionID, len(docs), total)
	a.initialized = true
	return nil
}

// Ask answers one question from the corpus. Provider failures surface as
// errors; callers running a chat loop print them and stay alive. On
// success the exchange is recorded into conversation memory, which may
// synchronously regenerate the rolling summary.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	if err := a.Initialize(ctx); err != nil {
		return "", err
	}

	results, err := a.searcher.Search(ctx, question, a.cfg.TopK)
	if err != nil {
		return "", fmt.Errorf("searching documents: %w", err)
	}

	messages := a.buildMessages(question, results)

	answer, err := a.completer.Complete(ctx, messages, a.cfg.MaxTokens, a.cfg.Temperature)
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}

	a.memory.Record(ctx, question, answer)
	return answer, nil
}

// buildMessages assembles the ordered message list: system policy,
// rolling summary, recent window, then the context-augmented question.
func (a *Agent) buildMessages(question string, results []models.RetrievalResult) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}

	if summary := a.memory.Summary(); summary != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "CONVERSATION SUMMARY: " + summary,
		})
	}

	for _, turn := range a.memory.Window() {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: a.buildUserMessage(question, results),
	})

	return messages
}

// buildUserMessage labels each retrieval result with its source filename
// and appends the current question with the context-only instruction.
func (a *Agent) buildUserMessage(question string, results []models.RetrievalResult) string {
	var context strings.Builder
	for i, result := range results {
		fmt.Fprintf(&context, "Source %d (%s):\n%s\n\n", i+1, result.Metadata.Filename, result.Content)
	}

	return fmt.Sprintf(`RELEVANT DOCUMENT CONTEXT:
%s
CURRENT QUESTION: %s

IMPORTANT: Only answer if the information is available in the document context above. If not available, respond with %q. Do not provide any external knowledge.`,
		context.String(), question, RefusalMessage)
}

// Reindex drops the stored chunks and ingests the corpus from scratch.
// Used when documents changed and the warm-start skip would mask it.
func (a *Agent) Reindex(ctx context.Context) error {
	a.mu.Lock()
	if err := a.store.Clear(); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("clearing index: %w", err)
	}
	a.initialized = false
	a.mu.Unlock()

	return a.Initialize(ctx)
}

// ClearMemory wipes the conversation window and summary for this session.
func (a *Agent) ClearMemory() {
	a.memory.Reset()
}

// Status describes the agent's corpus and embedding state.
type Status struct {
	SessionID      string `json:"session_id"`
	Chunks         int    `json:"chunks"`
	VectorMode     bool   `json:"vector_mode"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	Dimension      int    `json:"dimension,omitempty"`
	Turns          int    `json:"turns"`
}

// Status reports the current corpus and session state.
func (a *Agent) Status() (Status, error) {
	count, err := a.store.Count()
	if err != nil {
		return Status{}, fmt.Errorf("checking index: %w", err)
	}

	return Status{
		SessionID:      a.sessionID,
		Chunks:         count,
		VectorMode:     a.store.VectorMode(),
		EmbeddingModel: a.provider.ModelName(),
		Dimension:      a.provider.Dimension(),
		Turns:          a.memory.Len(),
	}, nil
}

// Search exposes raw retrieval results without invoking the completion
// capability. Used by the MCP surface.
func (a *Agent) Search(ctx context.Context, query string, k int) ([]models.RetrievalResult, error) {
	if err := a.Initialize(ctx); err != nil {
		return nil, err
	}
	return a.searcher.Search(ctx, query, k)
}
