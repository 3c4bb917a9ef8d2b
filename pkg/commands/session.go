package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/fedash/pkg/commands/options"
	runsession "tableflip.dev/fedash/pkg/runner/session"
)

func addShow(topLevel *cobra.Command, a *app, what runsession.What, cmd *cobra.Command) {
	oo := &options.OutputOptions{}
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		out, err := oo.Printer(cmd.OutOrStdout())
		if err != nil {
			return oo.HandleError(cmd.OutOrStdout(), err)
		}
		c, done, err := a.connect(cmd)
		if err != nil {
			return oo.HandleError(cmd.OutOrStdout(), err)
		}
		defer done()

		s := runsession.Show{
			Controller: c,
			What:       what,
			Output:     out,
		}
		return oo.HandleError(cmd.OutOrStdout(), s.Do(cmd.Context()))
	}
	options.AddOutputArg(cmd, oo)
	options.AddFormatArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addLogin(topLevel *cobra.Command, a *app) {
	addShow(topLevel, a, runsession.ShowSession, &cobra.Command{
		Use:   "login",
		Short: "Log in and show the session.",
		Example: `
fedash login -u alice
fedash login -u alice -C p/my_project --output yaml
`,
	})
}

func addContexts(topLevel *cobra.Command, a *app) {
	addShow(topLevel, a, runsession.ShowContexts, &cobra.Command{
		Use:   "contexts",
		Short: "List the contexts you can work in.",
		Example: `
fedash contexts
fedash contexts --json
`,
	})
}

func addCollections(topLevel *cobra.Command, a *app) {
	addShow(topLevel, a, runsession.ShowCollections, &cobra.Command{
		Use:   "collections",
		Short: "List the root collections of a context.",
		Example: `
fedash collections
fedash collections -C p/my_project
`,
	})
}
