// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Holds the verbose/quiet output controls shared by all commands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

const banner = `
██████╗  ██████╗  ██████╗ ██████╗██╗  ██╗ █████╗ ████████╗
██╔══██╗██╔═══██╗██╔════╝██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██║  ██║██║   ██║██║     ██║     ███████║███████║   ██║
██║  ██║██║   ██║██║     ██║     ██╔══██║██╔══██║   ██║
██████╔╝╚██████╔╝╚██████╗╚██████╗██║  ██║██║  ██║   ██║
╚═════╝  ╚═════╝  ╚═════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with your documents",
		Long: banner + `
Docchat answers questions from a local document corpus. Documents are
chunked, embedded, and indexed into a local SQLite database; answers are
generated strictly from the retrieved excerpts, with conversation memory
and a rolling summary for long sessions.

Put PDFs, text, or markdown files in your documents directory and run
"docchat chat" to start asking questions.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
