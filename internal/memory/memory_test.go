// ABOUTME: Tests for conversation memory window, summarization cadence, and reset
// ABOUTME: Uses a fake completer to observe and control summary generation

package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docchat-labs/docchat/internal/models"
)

type fakeCompleter struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeCompleter) Complete(_ context.Context, messages []openai.ChatCompletionMessage, _ int, _ float32) (string, error) {
	f.calls++
	if len(messages) > 0 {
		f.prompts = append(f.prompts, messages[len(messages)-1].Content)
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "summary", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func recordN(m *Memory, exchanges int) {
	for i := 0; i < exchanges; i++ {
		m.Record(context.Background(), fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}
}

func TestRecord_AppendsTurnsInOrder(t *testing.T) {
	m := New(&fakeCompleter{}, 20, 20)

	m.Record(context.Background(), "hello", "hi there")

	turns := m.Window()
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2", len(turns))
	}
	if turns[0].Role != models.RoleUser || turns[0].Content != "hello" {
		t.Errorf("turns[0] = %+v", turns[0])
	}
	if turns[1].Role != models.RoleAssistant || turns[1].Content != "hi there" {
		t.Errorf("turns[1] = %+v", turns[1])
	}
}

func TestWindow_BoundedToMostRecent(t *testing.T) {
	m := New(&fakeCompleter{}, 6, 100)

	recordN(m, 10) // 20 turns total

	window := m.Window()
	if len(window) != 6 {
		t.Fatalf("len(window) = %d, want 6", len(window))
	}

	// The window holds the last 3 exchanges in original order
	if window[0].Content != "question 7" {
		t.Errorf("window[0] = %q, want question 7", window[0].Content)
	}
	if window[5].Content != "answer 9" {
		t.Errorf("window[5] = %q, want answer 9", window[5].Content)
	}
}

func TestSummarization_TriggersOnInterval(t *testing.T) {
	fc := &fakeCompleter{responses: []string{"first summary"}}
	m := New(fc, 20, 4)

	recordN(m, 1)
	if fc.calls != 0 {
		t.Fatalf("summarizer ran after 2 turns, interval is 4")
	}
	if m.Summary() != "" {
		t.Errorf("Summary() = %q before first trigger, want empty", m.Summary())
	}

	recordN(m, 1)
	if fc.calls != 1 {
		t.Fatalf("summarizer calls = %d after 4 turns, want 1", fc.calls)
	}
	if m.Summary() != "first summary" {
		t.Errorf("Summary() = %q, want first summary", m.Summary())
	}
}

func TestSummarization_OverwritesNotAppends(t *testing.T) {
	fc := &fakeCompleter{responses: []string{"first summary", "second summary"}}
	m := New(fc, 20, 2)

	recordN(m, 1)
	recordN(m, 1)

	if fc.calls != 2 {
		t.Fatalf("summarizer calls = %d, want 2", fc.calls)
	}
	if got := m.Summary(); got != "second summary" {
		t.Errorf("Summary() = %q, want only the latest output", got)
	}
	if strings.Contains(m.Summary(), "first summary") {
		t.Error("summary must be overwritten, not concatenated")
	}
}

func TestSummarization_FailureRetainsPrevious(t *testing.T) {
	fc := &fakeCompleter{responses: []string{"good summary"}}
	m := New(fc, 20, 2)

	recordN(m, 1)
	if m.Summary() != "good summary" {
		t.Fatalf("Summary() = %q", m.Summary())
	}

	fc.err = errors.New("rate limited")
	recordN(m, 1)

	if m.Summary() != "good summary" {
		t.Errorf("Summary() = %q after failed regeneration, want previous retained", m.Summary())
	}
}

func TestSummarization_PromptCoversRecentTurns(t *testing.T) {
	fc := &fakeCompleter{}
	m := New(fc, 20, 4)

	recordN(m, 2)

	if len(fc.prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(fc.prompts))
	}
	prompt := fc.prompts[0]
	for _, want := range []string{"user: question 0", "assistant: answer 1"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	fc := &fakeCompleter{responses: []string{"a summary"}}
	m := New(fc, 20, 2)

	recordN(m, 3)
	if m.Summary() == "" || m.Len() == 0 {
		t.Fatal("precondition: memory should hold state")
	}

	m.Reset()

	if m.Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", m.Len())
	}
	if m.Summary() != "" {
		t.Errorf("Summary() = %q after Reset, want empty", m.Summary())
	}
	if got := m.Window(); len(got) != 0 {
		t.Errorf("Window() = %v after Reset, want empty", got)
	}

	// Post-reset recording starts a fresh cadence
	recordN(m, 1)
	if got := m.Window(); len(got) != 2 || got[0].Content != "question 0" {
		t.Errorf("Window() after reset+record = %v", got)
	}
}

func TestDefaults(t *testing.T) {
	m := New(&fakeCompleter{}, 0, 0)
	if m.window != DefaultWindow || m.interval != DefaultInterval {
		t.Errorf("defaults = %d/%d, want %d/%d", m.window, m.interval, DefaultWindow, DefaultInterval)
	}
}
