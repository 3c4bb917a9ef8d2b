// Package session provides the runners that open a session and show what it
// offers: identity, contexts and collections.
package session

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/fedash/pkg/printers"
	"tableflip.dev/fedash/pkg/workflow"
)

// Start logs in and, when Context is set, selects it.
type Start struct {
	Controller *workflow.Controller
	Username   string
	Password   string
	Context    string
}

// Do executes the login and context selection.
func (n *Start) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errors.New("can not log in, no controller")
	}
	if err := n.Controller.Login(ctx, n.Username, n.Password); err != nil {
		return errors.New(n.Controller.Session().Status)
	}
	if n.Context == "" || n.Context == n.Controller.Session().SelectedContext {
		return nil
	}
	if err := n.Controller.SelectContext(ctx, n.Context); err != nil {
		return fmt.Errorf("select context %q: %w", n.Context, err)
	}
	return nil
}

// What picks the part of the session Show prints.
type What int

const (
	ShowSession What = iota
	ShowContexts
	ShowCollections
)

// Show prints part of an open session.
type Show struct {
	Controller *workflow.Controller
	What       What
	Output     printers.Output
}

// Do prints the requested view.
func (n *Show) Do(_ context.Context) error {
	if n.Controller == nil {
		return errors.New("can not show, no controller")
	}
	s := n.Controller.Session()
	switch n.What {
	case ShowContexts:
		return n.Output.List("Contexts", s.AvailableContexts, s.SelectedContext)
	case ShowCollections:
		title := "Collections"
		if s.SelectedContext != "" {
			title = fmt.Sprintf("Collections in %s", s.SelectedContext)
		}
		return n.Output.List(title, s.AvailableCollections, s.SelectedCollection)
	default:
		return n.Output.Session(s)
	}
}
