// Package commands builds the fedash command tree.
package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/fedash/pkg/commands/options"
)

// New returns the root command.
func New() *cobra.Command {
	a := &app{
		global:      &options.GlobalOptions{},
		interactive: &options.InteractiveOptions{},
	}

	cmd := &cobra.Command{
		Use:   "fedash",
		Short: base.Wrap80("A terminal dashboard and command line for DataFed data records."),
		Long: base.Wrap80("fedash logs in to a DataFed web gateway, lets you pick a context " +
			"(one of your projects) and one of its collections, and creates, reads, updates, " +
			"deletes and transfers data records there. Run `fedash ui` for the dashboard."),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddGlobalArgs(cmd, a.global)
	options.InteractiveArgs(cmd, a.interactive)

	addCommands(cmd, a)
	return cmd
}

func addCommands(topLevel *cobra.Command, a *app) {
	addUI(topLevel, a)
	addLogin(topLevel, a)
	addContexts(topLevel, a)
	addCollections(topLevel, a)
	addProjects(topLevel, a)
	addRecord(topLevel, a)
	addTransfer(topLevel, a)
	addMCP(topLevel, a)
	addVersion(topLevel)
}
