package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the bot is alive",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status struct {
				Status string `json:"status"`
			}
			if err := client.Get("/healthz", &status); err != nil {
				return err
			}
			if jsonOut {
				fmt.Printf("{\"status\":%q}\n", status.Status)
				return nil
			}
			fmt.Printf("status: %s\n", status.Status)
			return nil
		},
	}
}
