package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/fedash/pkg/commands/options"
	"tableflip.dev/fedash/pkg/runner/projects"
)

func addProjects(topLevel *cobra.Command, a *app) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects visible to you.",
		Example: `
fedash projects
fedash projects -o yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := oo.Printer(cmd.OutOrStdout())
			if err != nil {
				return oo.HandleError(cmd.OutOrStdout(), err)
			}
			c, done, err := a.connect(cmd)
			if err != nil {
				return oo.HandleError(cmd.OutOrStdout(), err)
			}
			defer done()

			p := projects.List{
				Controller: c,
				Output:     out,
			}
			return oo.HandleError(cmd.OutOrStdout(), p.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddFormatArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
