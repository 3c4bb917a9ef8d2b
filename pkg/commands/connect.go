package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tableflip.dev/fedash/pkg/commands/options"
	"tableflip.dev/fedash/pkg/config"
	"tableflip.dev/fedash/pkg/datafed"
	"tableflip.dev/fedash/pkg/printers"
	runsession "tableflip.dev/fedash/pkg/runner/session"
	"tableflip.dev/fedash/pkg/workflow"
)

// newClient builds the remote adapter for cfg.
var newClient = func(cfg *config.Config, log *slog.Logger) datafed.Client {
	return datafed.NewHTTPClient(cfg.Endpoint, datafed.WithLogger(log))
}

// prompt asks for one value on the terminal.
var prompt = func(label string, mask bool) (string, error) {
	p := promptui.Prompt{Label: label}
	if mask {
		p.Mask = '•'
	}
	return p.Run()
}

var stdinIsTerminal = func() bool { return printers.IsTerminal(os.Stdin) }

// app is shared by every command of one tree.
type app struct {
	global      *options.GlobalOptions
	interactive *options.InteractiveOptions
}

// load resolves the configuration and builds the logger. Logs go to logSink
// unless a log file is configured.
func (a *app) load(cmd *cobra.Command, logSink io.Writer) (*config.Config, *slog.Logger, io.Closer, error) {
	loader := config.NewLoader(a.global.ConfigFile)
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return nil, nil, nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log, closer, err := cfg.Logger(logSink)
	if err != nil {
		return nil, nil, nil, err
	}
	if f := loader.ConfigFileUsed(); f != "" {
		log.Debug("config loaded", "file", f)
	}
	return cfg, log, closer, nil
}

func (a *app) controller(cfg *config.Config, log *slog.Logger) *workflow.Controller {
	return workflow.New(newClient(cfg, log),
		workflow.WithLogger(log),
		workflow.WithTimeout(cfg.Timeout),
	)
}

// credentials fills in a missing user or password from the terminal.
func (a *app) credentials(cfg *config.Config) (string, string, error) {
	user, pass := cfg.User, cfg.Password
	if a.interactive.NoPrompt || !stdinIsTerminal() {
		return user, pass, nil
	}
	var err error
	if user == "" {
		if user, err = prompt("Username", false); err != nil {
			return "", "", fmt.Errorf("read username: %w", err)
		}
	}
	if pass == "" {
		if pass, err = prompt("Password", true); err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
	}
	return user, pass, nil
}

// connect logs in and applies the configured context. done logs out and
// releases the log file.
func (a *app) connect(cmd *cobra.Command) (c *workflow.Controller, done func(), err error) {
	cfg, log, closer, err := a.load(cmd, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = closer.Close()
		}
	}()

	c = a.controller(cfg, log)
	user, pass, err := a.credentials(cfg)
	if err != nil {
		return nil, nil, err
	}
	start := &runsession.Start{
		Controller: c,
		Username:   user,
		Password:   pass,
		Context:    cfg.Context,
	}
	if err := start.Do(cmd.Context()); err != nil {
		return nil, nil, err
	}
	return c, func() {
		c.Logout(context.WithoutCancel(cmd.Context()))
		_ = closer.Close()
	}, nil
}
