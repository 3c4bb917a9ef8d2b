// Package printers renders sessions, results and listings for the terminal
// and for machines.
package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"tableflip.dev/fedash/pkg/datafed"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json or yaml)", s)
	}
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlValue(v)); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// yamlValue keeps normalized fields in their original order.
func yamlValue(v any) any {
	switch t := v.(type) {
	case datafed.Fields:
		return fieldsNode(t)
	case *datafed.Fields:
		if t == nil {
			return nil
		}
		return fieldsNode(*t)
	}
	// Results and similar wrappers carry fields in their payload.
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var n yaml.Node
	if err := yaml.Unmarshal(b, &n); err != nil || len(n.Content) == 0 {
		return v
	}
	blockStyle(n.Content[0])
	return n.Content[0]
}

// blockStyle drops the flow and quoting styles a node picks up from JSON
// text. Tags are kept, so strings that look like numbers stay quoted.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func fieldsNode(f datafed.Fields) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range f.Keys {
		var val yaml.Node
		if err := val.Encode(f.Values[k]); err != nil {
			val = yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(f.Values[k])}
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, &val)
	}
	return n
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderMarkdown renders md for the terminal. A zero width keeps glamour's
// default wrap.
func RenderMarkdown(md string, width int) (string, error) {
	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
