// ABOUTME: One-shot question command for scripting and quick lookups
// ABOUTME: Asks a single question and prints the grounded answer
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askDocsDir string

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Ask a single question against the document corpus and exit.

Examples:
  docchat ask "What is the enrolment fee?"
  docchat ask --docs ./manuals "How do I reset the device?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVar(&askDocsDir, "docs", "", "Documents directory (overrides DOCCHAT_DOCS_DIR)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	qa, cleanup, err := buildAgent(ctx, askDocsDir, false)
	if err != nil {
		return err
	}
	defer cleanup()

	answer, err := qa.Ask(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
