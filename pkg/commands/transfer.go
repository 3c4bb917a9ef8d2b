package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/fedash/pkg/commands/options"
	"tableflip.dev/fedash/pkg/printers"
	"tableflip.dev/fedash/pkg/runner/record"
	"tableflip.dev/fedash/pkg/workflow"
)

func addTransfer(topLevel *cobra.Command, a *app) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "transfer <source-id> <destination-collection>",
		Short: "Copy a record into another collection and move the source onto the copy.",
		Example: `
fedash transfer 123456 c/654321
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, a, oo, func(c *workflow.Controller, out printers.Output) doer {
				return &record.Transfer{
					Controller: c,
					SourceID:   args[0],
					Dest:       args[1],
					Output:     out,
				}
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddFormatArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
