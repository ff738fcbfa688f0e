package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionJoinCmd())
	cmd.AddCommand(newSessionSpectateCmd())
	cmd.AddCommand(newSessionUsersCmd())
	cmd.AddCommand(newSessionCodeCmd())
	cmd.AddCommand(newSessionAdminCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var name, password, nickname string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session as its admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"name":     name,
				"password": password,
				"nickname": nickname,
			}

			var result TokenResult
			if err := client.Post("/api/v1/sessions", body, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Session created. Run 'duelctl bind' to connect.")
			if cfg.Verbose {
				out.Print(result)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Session name")
	cmd.Flags().StringVar(&password, "password", "", "Session password")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Your player nickname")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("nickname")

	return cmd
}

func newSessionJoinCmd() *cobra.Command {
	var password, nickname string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a session as a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"code":     args[0],
				"password": password,
				"nickname": nickname,
			}

			var result TokenResult
			if err := client.Post("/api/v1/sessions/join", body, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Joined. Run 'duelctl bind' to connect.")
			if cfg.Verbose {
				out.Print(result)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Session password")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Your player nickname")
	_ = cmd.MarkFlagRequired("nickname")

	return cmd
}

func newSessionSpectateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectate <code>",
		Short: "Spectate a session as an audience member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"code": args[0]}

			var result TokenResult
			if err := client.Post("/api/v1/sessions/spectate", body, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Spectating. Run 'duelctl bind' to connect.")
			if cfg.Verbose {
				out.Print(result)
			}
			return nil
		},
	}

	return cmd
}

func newSessionUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the session's players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UsersResult
			if err := client.Get("/api/v1/session/users", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "code",
		Short: "Show the session's join code",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CodeResult
			if err := client.Get("/api/v1/session/code", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "admin",
		Short: "Check whether this connection is the session admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AdminResult
			if err := client.Get("/api/v1/session/admin", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
