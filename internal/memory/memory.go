// ABOUTME: Conversation memory with a bounded turn window and a rolling summary
// ABOUTME: Summaries regenerate periodically via the completion capability and overwrite, never append
package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docchat-labs/docchat/internal/models"
)

// Completer is the slice of the LLM client the memory needs for
// summarization.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (string, error)
}

const (
	// DefaultWindow is the number of recent turns sent verbatim as context.
	DefaultWindow = 20
	// DefaultInterval is the number of turns between summary regenerations.
	DefaultInterval = 20

	summaryMaxTokens   = 200
	summaryTemperature = 0.3
)

const summaryPrompt = `Summarize the key topics and information discussed in this conversation. Focus on:
1. Main topics discussed
2. Key information provided
3. The user's specific needs or questions
4. Important details that should be remembered

Conversation:
%s

Provide a concise summary:`

// Memory holds the conversation state for one session: an append-only turn
// log and a rolling summary of older context. All methods are safe for
// concurrent use; the MCP surface can call in from multiple requests.
type Memory struct {
	mu           sync.Mutex
	turns        []models.Turn
	summary      string
	window       int
	interval     int
	sinceSummary int
	completer    Completer
}

// New creates a Memory. window is the number of recent turns returned by
// Window; interval is the number of recorded turns between summary
// regenerations. Non-positive values fall back to the defaults.
func New(completer Completer, window, interval int) *Memory {
	if window <= 0 {
		window = DefaultWindow
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Memory{
		window:    window,
		interval:  interval,
		completer: completer,
	}
}

// Record appends a user/assistant exchange and regenerates the summary
// once enough new turns have accumulated. Summarization is synchronous and
// its failure is logged, never propagated: the user-facing answer was
// already produced before this runs, so the previous summary is simply
// retained.
//
// The trigger counts turns recorded since the last summarization attempt
// rather than checking len(turns) modulo the interval, so out-of-band
// truncation of the log can never skip a cycle.
func (m *Memory) Record(ctx context.Context, userText, assistantText string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns,
		models.Turn{Role: models.RoleUser, Content: userText},
		models.Turn{Role: models.RoleAssistant, Content: assistantText},
	)
	m.sinceSummary += 2

	if m.sinceSummary < m.interval {
		return
	}
	m.sinceSummary = 0

	summary, err := m.summarize(ctx)
	if err != nil {
		log.Printf("Warning: conversation summarization failed, keeping previous summary: %v", err)
		return
	}
	m.summary = summary
}

// summarize regenerates the summary over the most recent interval turns.
// Caller holds the lock.
func (m *Memory) summarize(ctx context.Context) (string, error) {
	recent := m.turns
	if len(recent) > m.interval {
		recent = recent[len(recent)-m.interval:]
	}

	var sb strings.Builder
	for _, turn := range recent {
		sb.WriteString(string(turn.Role))
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf(summaryPrompt, sb.String()),
		},
	}

	return m.completer.Complete(ctx, messages, summaryMaxTokens, summaryTemperature)
}

// Window returns the most recent turns, at most the configured window, in
// original order.
func (m *Memory) Window() []models.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := 0
	if len(m.turns) > m.window {
		start = len(m.turns) - m.window
	}

	out := make([]models.Turn, len(m.turns)-start)
	copy(out, m.turns[start:])
	return out
}

// Summary returns the current rolling summary, empty until the first
// successful summarization.
func (m *Memory) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}

// Len returns the total number of recorded turns.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Reset clears the turn log and the summary atomically.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = nil
	m.summary = ""
	m.sinceSummary = 0
}
