// Package projects provides the runner that lists projects.
package projects

import (
	"context"
	"errors"

	"tableflip.dev/fedash/pkg/printers"
	"tableflip.dev/fedash/pkg/workflow"
)

// List prints the projects visible to the logged in user.
type List struct {
	Controller *workflow.Controller
	Output     printers.Output
}

// Do executes the listing.
func (n *List) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errors.New("can not list projects, no controller")
	}
	r := n.Controller.ListProjects(ctx)
	if err := n.Output.Projects(r); err != nil {
		return err
	}
	return r.Err()
}
