package options

import (
	"github.com/spf13/cobra"
)

// GlobalOptions are the persistent flags every command shares. Empty values
// fall through to FEDASH_* variables, the config file and the defaults.
type GlobalOptions struct {
	ConfigFile string
	Endpoint   string
	User       string
	Password   string
	Context    string
	Timeout    string
	LogLevel   string
	LogFile    string
}

// AddGlobalArgs registers the persistent flags on the root command.
func AddGlobalArgs(cmd *cobra.Command, o *GlobalOptions) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&o.ConfigFile, "config", "",
		"Config file (default searches ./.fedash.yaml and ~/.fedash.yaml).")
	pf.StringVar(&o.Endpoint, "endpoint", "",
		"DataFed web gateway URL.")
	pf.StringVarP(&o.User, "user", "u", "",
		"DataFed user id.")
	pf.StringVar(&o.Password, "password", "",
		"DataFed password. Prompted for when missing on a terminal.")
	pf.StringVarP(&o.Context, "context", "C", "",
		"Context (project id) to work in. Defaults to the first one offered.")
	pf.StringVar(&o.Timeout, "timeout", "",
		`Bound on each remote call, e.g. "45s". "0" disables the bound.`)
	pf.StringVar(&o.LogLevel, "log-level", "",
		"Log level: debug, info, warn or error.")
	pf.StringVar(&o.LogFile, "log-file", "",
		"Write logs to this file instead of stderr.")
}
