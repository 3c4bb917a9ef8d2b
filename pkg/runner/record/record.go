// Package record provides the runners for the record lifecycle commands.
package record

import (
	"context"
	"errors"

	"tableflip.dev/fedash/pkg/printers"
	"tableflip.dev/fedash/pkg/session"
	"tableflip.dev/fedash/pkg/workflow"
)

var errNoController = errors.New("no controller")

// fileResult reports a metadata file that cannot be used. Invalid JSON is a
// missing input; a read failure is an error.
func fileResult(err error) session.Result {
	if workflow.IsValidation(err) {
		return session.Warning(err)
	}
	return session.Result{Kind: session.KindError, Message: err.Error()}
}

func report(out printers.Output, r session.Result) error {
	if err := out.Result(r); err != nil {
		return err
	}
	return r.Err()
}

// Create makes a new data record.
type Create struct {
	Controller *workflow.Controller
	Title      string
	Metadata   string
	// MetadataFile, when set, is read into Metadata first.
	MetadataFile string
	Parent       string
	Output       printers.Output
}

// Do executes the create.
func (n *Create) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errNoController
	}
	metadata := n.Metadata
	if n.MetadataFile != "" {
		if err := n.Controller.LoadMetadataFile(n.MetadataFile); err != nil {
			return report(n.Output, fileResult(err))
		}
		metadata = n.Controller.Forms().Create.Metadata
	}
	return report(n.Output, n.Controller.CreateRecord(ctx, n.Title, metadata, n.Parent))
}

// Read shows a data record.
type Read struct {
	Controller *workflow.Controller
	ID         string
	Output     printers.Output
}

// Do executes the read.
func (n *Read) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errNoController
	}
	return report(n.Output, n.Controller.ReadRecord(ctx, n.ID))
}

// Update replaces a record's metadata.
type Update struct {
	Controller   *workflow.Controller
	ID           string
	Metadata     string
	MetadataFile string
	Output       printers.Output
}

// Do executes the update.
func (n *Update) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errNoController
	}
	metadata := n.Metadata
	if n.MetadataFile != "" {
		content, err := workflow.ReadMetadataFile(n.MetadataFile)
		if err != nil {
			return report(n.Output, fileResult(err))
		}
		metadata = content
	}
	return report(n.Output, n.Controller.UpdateRecord(ctx, n.ID, metadata))
}

// Delete removes a data record.
type Delete struct {
	Controller *workflow.Controller
	ID         string
	Output     printers.Output
}

// Do executes the delete.
func (n *Delete) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errNoController
	}
	return report(n.Output, n.Controller.DeleteRecord(ctx, n.ID))
}

// Transfer copies a record into another collection and moves the source
// onto the copy.
type Transfer struct {
	Controller *workflow.Controller
	SourceID   string
	Dest       string
	Output     printers.Output
}

// Do executes the transfer.
func (n *Transfer) Do(ctx context.Context) error {
	if n.Controller == nil {
		return errNoController
	}
	return report(n.Output, n.Controller.TransferData(ctx, n.SourceID, n.Dest))
}
