package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard [game]",
		Short: "Show a game's leaderboard",
		Long:  "Show the top scores for a game namespace (guess_time or trivia).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game := "guess_time"
			if len(args) == 1 {
				game = args[0]
			}

			var board struct {
				Game    string `json:"game"`
				Entries []struct {
					Rank        int    `json:"rank"`
					DisplayName string `json:"display_name"`
					Score       int64  `json:"score"`
				} `json:"entries"`
			}
			path := fmt.Sprintf("/api/v1/leaderboard/%s?limit=%d", game, limit)
			if err := client.Get(path, &board); err != nil {
				return err
			}

			if jsonOut {
				data, err := json.MarshalIndent(board, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(board.Entries) == 0 {
				fmt.Printf("no scores recorded for %s\n", board.Game)
				return nil
			}
			fmt.Printf("leaderboard: %s\n", board.Game)
			for _, entry := range board.Entries {
				fmt.Printf("%3d. %-24s %d\n", entry.Rank, entry.DisplayName, entry.Score)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum rows to show")
	return cmd
}
