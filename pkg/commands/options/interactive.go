package options

import (
	"github.com/spf13/cobra"
)

// InteractiveOptions
type InteractiveOptions struct {
	NoPrompt bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.PersistentFlags().BoolVar(&o.NoPrompt, "no-prompt", false,
		`Never prompt for missing credentials.`)
}
