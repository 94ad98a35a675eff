package cmd

import (
	"fmt"
	"os"

	"doccast/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "doccast",
	Short: "DocCast turns uploaded PDFs into quizzes and podcasts.",
	Long: `DocCast is the browser-facing gateway of the DocCast product.
It relays upload, chat, quiz and audio requests to the processing
backend and keeps per-session document state.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Running the bare binary starts the gateway, same as "doccast server".
		server.Start()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
