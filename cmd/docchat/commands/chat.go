// ABOUTME: Interactive chat command with conversation memory
// ABOUTME: REPL loop over the document corpus with clear/help/quit controls
package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var chatDocsDir string

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session over the document corpus.

On first run the corpus is ingested into a local index; later runs
reuse the index. Each answer is grounded in retrieved document
excerpts. Conversation memory carries across questions in a session.

Session commands:
  clear        wipe the conversation memory
  help         show session commands
  quit / exit  end the session (also: bye)`,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatDocsDir, "docs", "", "Documents directory (overrides DOCCHAT_DOCS_DIR)")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	qa, cleanup, err := buildAgent(ctx, chatDocsDir, false)
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()

	if !quiet {
		fmt.Fprintln(out, "Preparing document index...")
	}
	if err := qa.Initialize(ctx); err != nil {
		return err
	}

	if !quiet {
		status, err := qa.Status()
		if err == nil {
			mode := "lexical"
			if status.VectorMode {
				mode = fmt.Sprintf("vector (%s)", status.EmbeddingModel)
			}
			fmt.Fprintf(out, "Ready: %d chunks indexed, %s retrieval. Type 'help' for commands.\n\n", status.Chunks, mode)
		}
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		switch strings.ToLower(question) {
		case "quit", "exit", "bye":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "clear":
			qa.ClearMemory()
			fmt.Fprintln(out, "Conversation memory cleared.")
			continue
		case "help":
			fmt.Fprintln(out, "Commands: clear (reset memory), help, quit/exit/bye (end session)")
			continue
		}

		answer, err := qa.Ask(ctx, question)
		if err != nil {
			// A failed question does not end the session
			fmt.Fprintf(out, "error: %v\n\n", err)
			continue
		}

		fmt.Fprintf(out, "\n%s\n\n", answer)
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
