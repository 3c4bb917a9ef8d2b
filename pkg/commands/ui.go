package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"tableflip.dev/fedash/pkg/config"
	runsession "tableflip.dev/fedash/pkg/runner/session"
	"tableflip.dev/fedash/pkg/tui/dashboard"
	"tableflip.dev/fedash/pkg/workflow"
)

// prelogin logs in when both credentials are configured. A failure is left
// in the session status for the user to see.
func prelogin(ctx context.Context, c *workflow.Controller, cfg *config.Config, log *slog.Logger) {
	if cfg.User == "" || cfg.Password == "" {
		return
	}
	start := &runsession.Start{
		Controller: c,
		Username:   cfg.User,
		Password:   cfg.Password,
		Context:    cfg.Context,
	}
	if err := start.Do(ctx); err != nil {
		log.Warn("login with configured credentials failed", "user", cfg.User, "error", err)
	}
}

func addUI(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
fedash ui
fedash ui --log-file ~/fedash.log --log-level debug
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The dashboard owns the terminal; logs only go to a file.
			cfg, log, closer, err := a.load(cmd, io.Discard)
			if err != nil {
				return err
			}
			defer closer.Close()

			c := a.controller(cfg, log)
			prelogin(cmd.Context(), c, cfg, log)
			return dashboard.Run(cmd.Context(), c, dashboard.WithLogger(log))
		},
	}

	topLevel.AddCommand(cmd)
}
