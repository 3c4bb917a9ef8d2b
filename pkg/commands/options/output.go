package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tableflip.dev/fedash/pkg/printers"
	"tableflip.dev/fedash/pkg/session"
)

// ErrReported is returned once an error has been written for the user. The
// process should exit non-zero without printing it again.
var ErrReported = errors.New("error already reported")

// OutputOptions
type OutputOptions struct {
	JSON   bool
	Output string
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

func AddFormatArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().StringVarP(&po.Output, "output", "o", string(printers.FormatTable),
		"Output format. One of table, json or yaml.")
}

// Printer returns the output for w. --json wins over --output.
func (o *OutputOptions) Printer(w io.Writer) (printers.Output, error) {
	if o.JSON {
		return printers.Output{Out: w, Format: printers.FormatJSON}, nil
	}
	f, err := printers.ParseFormat(o.Output)
	if err != nil {
		return printers.Output{}, err
	}
	return printers.Output{Out: w, Format: f, Markdown: printers.IsTerminal(w)}, nil
}

// HandleError reports err. Warning and error results have already been
// printed by the runner; with --json any other error is written as
// {"error": ...}. Either way ErrReported is returned so the exit status is
// non-zero.
func (o *OutputOptions) HandleError(w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	var re *session.ResultError
	if errors.As(err, &re) {
		return ErrReported
	}
	if !o.JSON {
		return err
	}
	b, merr := json.Marshal(map[string]string{
		"error": err.Error(),
	})
	if merr != nil {
		return merr
	}
	_, _ = fmt.Fprintln(w, string(b))
	return ErrReported
}
