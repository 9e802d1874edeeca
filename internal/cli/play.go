package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Connect and play interactively",
		Long: `Connect to the game websocket, register, and read commands from stdin.

` + playHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Name == "" || cfg.Password == "" {
				return errors.New("--name and --password are required (env: SEABATTLE_NAME, SEABATTLE_PASSWORD)")
			}

			wsURL, err := cfg.WebSocketURL()
			if err != nil {
				return err
			}
			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, nil)
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
			}

			session := NewSession(conn, NewOutput(cfg.Output, cmd.OutOrStdout()), timeout)
			defer func() { _ = session.Close() }()

			if err := session.Register(cfg.Name, cfg.Password); err != nil {
				return err
			}
			return session.Run(cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&cfg.Name, "name", cfg.Name, "Player name (env: SEABATTLE_NAME)")
	cmd.Flags().StringVar(&cfg.Password, "password", cfg.Password, "Player password (env: SEABATTLE_PASSWORD)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "How long to wait for an expected server message")

	return cmd
}
