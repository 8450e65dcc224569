// ABOUTME: Ingest command indexes the document corpus without starting a chat
// ABOUTME: Supports a full rebuild when documents have changed
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	ingestDocsDir string
	ingestRebuild bool
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index the document corpus",
		Long: `Extract, chunk, embed, and index the document corpus.

Ingestion is skipped when the index already holds chunks; pass
--rebuild to drop the index and ingest from scratch after documents
change.

Examples:
  docchat ingest
  docchat ingest --docs ./manuals --rebuild`,
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestDocsDir, "docs", "", "Documents directory (overrides DOCCHAT_DOCS_DIR)")
	cmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "Drop the existing index and re-ingest")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	qa, cleanup, err := buildAgent(ctx, ingestDocsDir, ingestRebuild)
	if err != nil {
		return err
	}
	defer cleanup()

	if ingestRebuild {
		err = qa.Reindex(ctx)
	} else {
		err = qa.Initialize(ctx)
	}
	if err != nil {
		return err
	}

	status, err := qa.Status()
	if err != nil {
		return err
	}

	if !quiet {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Indexed chunks: %d\n", status.Chunks)
		if status.VectorMode {
			fmt.Fprintf(out, "Retrieval: vector, %s (%d dimensions)\n", status.EmbeddingModel, status.Dimension)
		} else {
			fmt.Fprintln(out, "Retrieval: lexical (no embedding model available)")
		}
	}
	return nil
}
