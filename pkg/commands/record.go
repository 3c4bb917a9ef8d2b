package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/fedash/pkg/commands/options"
	"tableflip.dev/fedash/pkg/printers"
	"tableflip.dev/fedash/pkg/runner/record"
	"tableflip.dev/fedash/pkg/workflow"
)

type doer interface {
	Do(ctx context.Context) error
}

// runRecord logs in, builds the runner for the session and runs it.
func runRecord(cmd *cobra.Command, a *app, oo *options.OutputOptions, build func(*workflow.Controller, printers.Output) doer) error {
	out, err := oo.Printer(cmd.OutOrStdout())
	if err != nil {
		return oo.HandleError(cmd.OutOrStdout(), err)
	}
	c, done, err := a.connect(cmd)
	if err != nil {
		return oo.HandleError(cmd.OutOrStdout(), err)
	}
	defer done()
	return oo.HandleError(cmd.OutOrStdout(), build(c, out).Do(cmd.Context()))
}

func addRecord(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Create, read, update and delete data records.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newRecordCreateCmd(a),
		newRecordReadCmd(a),
		newRecordUpdateCmd(a),
		newRecordDeleteCmd(a),
	)
	topLevel.AddCommand(cmd)
}

func newRecordCreateCmd(a *app) *cobra.Command {
	oo := &options.OutputOptions{}
	to := &options.TitleOptions{}
	mo := &options.MetadataOptions{}
	co := &options.CollectionOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a data record.",
		Example: `
fedash record create -t "run 7" -m '{"temperature": 4}'
fedash record create -t "run 7" -f run7.json -p c/123456
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecord(cmd, a, oo, func(c *workflow.Controller, out printers.Output) doer {
				return &record.Create{
					Controller:   c,
					Title:        to.Title,
					Metadata:     mo.Metadata,
					MetadataFile: mo.MetadataFile,
					Parent:       co.Parent,
					Output:       out,
				}
			})
		},
	}

	options.AddTitleArgs(cmd, to)
	options.AddMetadataArgs(cmd, mo)
	options.AddParentArgs(cmd, co)
	options.AddOutputArg(cmd, oo)
	options.AddFormatArg(cmd, oo)
	return cmd
}

func newRecordReadCmd(a *app) *cobra.Command {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Show a data record.",
		Example: `
fedash record read 123456
fedash record read d/123456 -o yaml
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, a, oo, func(c *workflow.Controller, out printers.Output) doer {
				return &record.Read{Controller: c, ID: args[0], Output: out}
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddFormatArg(cmd, oo)
	return cmd
}

func newRecordUpdateCmd(a *app) *cobra.Command {
	oo := &options.OutputOptions{}
	mo := &options.MetadataOptions{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the metadata of a data record.",
		Example: `
fedash record update 123456 -m '{"temperature": 5}'
fedash record update 123456 -f run7.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, a, oo, func(c *workflow.Controller, out printers.Output) doer {
				return &record.Update{
					Controller:   c,
					ID:           args[0],
					Metadata:     mo.Metadata,
					MetadataFile: mo.MetadataFile,
					Output:       out,
				}
			})
		},
	}

	options.AddMetadataArgs(cmd, mo)
	options.AddOutputArg(cmd, oo)
	options.AddFormatArg(cmd, oo)
	return cmd
}

func newRecordDeleteCmd(a *app) *cobra.Command {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a data record.",
		Example: `
fedash record delete 123456
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, a, oo, func(c *workflow.Controller, out printers.Output) doer {
				return &record.Delete{Controller: c, ID: args[0], Output: out}
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddFormatArg(cmd, oo)
	return cmd
}
