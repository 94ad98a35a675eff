package cmd

import (
	"doccast/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the DocCast gateway",
	Long:  `Start the HTTP gateway that serves the browser API and relays requests to the processing backend.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
