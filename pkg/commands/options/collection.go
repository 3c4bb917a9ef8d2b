// Package options defines shared flag helpers for CLI commands.
package options

import (
	"github.com/spf13/cobra"
)

// CollectionOptions select the collection a new record goes into.
type CollectionOptions struct {
	Parent string
}

// AddParentArgs wires the parent collection flag on the provided command.
func AddParentArgs(cmd *cobra.Command, o *CollectionOptions) {
	cmd.Flags().StringVarP(&o.Parent, "parent", "p", "",
		"Parent collection id. Defaults to the first collection of the context.")
}
