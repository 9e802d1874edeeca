package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newWinnersCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "winners",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			var result []Standing
			if err := client.Get("/api/v1/winners", query, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(Leaderboard(result))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Only show the top N players")

	return cmd
}
