package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <slot>",
		Short: "Vote for card 1 or card 2 in the current duel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}

			if err := client.Post("/api/v1/session/vote", map[string]int{"slot": slot}, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Vote cast")
			return nil
		},
	}
}

func newDuelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duel",
		Short: "Start a new duel between two random players",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/session/duel", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Duel started")
			return nil
		},
	}
}

func newLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the session (the admin leaving ends it for everyone)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/session/leave", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Left the session")
			return nil
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			if err := client.Get("/api/v1/health", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
