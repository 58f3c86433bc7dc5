package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	jsonOut   bool
	client    *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "botctl",
		Short: "CLI tool for the splitbot API",
		Long: `botctl is a CLI tool for inspecting a running splitbot instance
over its read-only HTTP API: liveness and per-game leaderboards.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client = NewClient(serverURL)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Server URL (env: SPLITBOT_SERVER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output raw JSON")

	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newLeaderboardCmd())

	return rootCmd
}

func defaultServerURL() string {
	if url := os.Getenv("SPLITBOT_SERVER"); url != "" {
		return url
	}
	return "http://localhost:8080"
}
