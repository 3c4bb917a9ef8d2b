package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"tableflip.dev/fedash/pkg/datafed"
	"tableflip.dev/fedash/pkg/session"
)

func compact(f datafed.Fields) string {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Sprint(f.Values)
	}
	return string(b)
}

func markdown(f datafed.Fields) string {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		b = []byte(compact(f))
	}
	return "**Record Data:**\n\n```json\n" + string(b) + "\n```"
}

// fields is the normalized dump of r.
func fields(r *datafed.Record) datafed.Fields {
	return datafed.Normalize(r.Dump())
}

// CreateRecord creates a data record under parent, or under the selected
// collection when parent is empty.
func (c *Controller) CreateRecord(ctx context.Context, title, metadata, parent string) session.Result {
	c.forms.Create = session.CreateForm{Title: title, Metadata: metadata}
	if err := c.forms.Create.Validate(); err != nil {
		return c.finish(session.Warning(err), err)
	}
	if parent == "" {
		parent = c.sess.SelectedCollection
	}

	var rec *datafed.Record
	err := c.scoped(ctx, "CreateRecord", func(ctx context.Context) error {
		var err error
		rec, err = c.client.CreateRecord(ctx, datafed.RecordSpec{Title: title, Metadata: metadata, ParentID: parent})
		return err
	})
	if err != nil {
		return c.finish(session.Failure("Failed to create record", err), err)
	}
	f := fields(rec)
	c.log.Info("record created", "id", rec.ID, "parent", parent)
	return c.finish(session.Success(f, "Record created: %s", compact(f)), nil)
}

// ReadRecord fetches a record and renders its fields.
func (c *Controller) ReadRecord(ctx context.Context, id string) session.Result {
	c.forms.Read = session.ReadForm{RecordID: id}
	if err := c.forms.Read.Validate(); err != nil {
		return c.finish(session.Warning(err), err)
	}

	var rec *datafed.Record
	err := c.scoped(ctx, "Record", func(ctx context.Context) error {
		var err error
		rec, err = c.client.Record(ctx, datafed.RecordID(id))
		return err
	})
	if err != nil {
		return c.finish(session.Failure("Failed to read record", err), err)
	}
	f := fields(rec)
	return c.finish(session.Result{Kind: session.KindSuccess, Message: markdown(f), Payload: f}, nil)
}

// UpdateRecord replaces a record's metadata.
func (c *Controller) UpdateRecord(ctx context.Context, id, metadata string) session.Result {
	c.forms.Update = session.UpdateForm{RecordID: id, Metadata: metadata}
	if err := c.forms.Update.Validate(); err != nil {
		return c.finish(session.Warning(err), err)
	}

	var rec *datafed.Record
	err := c.scoped(ctx, "UpdateRecord", func(ctx context.Context) error {
		var err error
		rec, err = c.client.UpdateRecord(ctx, datafed.RecordID(id), metadata)
		return err
	})
	if err != nil {
		return c.finish(session.Failure("Failed to update record", err), err)
	}
	f := fields(rec)
	return c.finish(session.Success(f, "Record updated: %s", compact(f)), nil)
}

// DeleteRecord deletes a record.
func (c *Controller) DeleteRecord(ctx context.Context, id string) session.Result {
	c.forms.Delete = session.DeleteForm{RecordID: id}
	if err := c.forms.Delete.Validate(); err != nil {
		return c.finish(session.Warning(err), err)
	}

	err := c.scoped(ctx, "DeleteRecord", func(ctx context.Context) error {
		return c.client.DeleteRecord(ctx, datafed.RecordID(id))
	})
	if err != nil {
		return c.finish(session.Failure("Failed to delete record", err), err)
	}
	c.log.Info("record deleted", "id", datafed.RecordID(id))
	return c.finish(session.Success(nil, "Record successfully deleted"), nil)
}

// TransferData copies the source record into dest and moves the source onto
// the copy. If the move fails the copy is kept; nothing is rolled back.
func (c *Controller) TransferData(ctx context.Context, sourceID, dest string) session.Result {
	c.forms.Transfer = session.TransferForm{SourceID: sourceID, DestCollection: dest}
	if err := c.forms.Transfer.Validate(); err != nil {
		return c.finish(session.Warning(err), err)
	}
	const prefix = "Failed to transfer data"
	src := datafed.RecordID(sourceID)

	var source *datafed.Record
	err := c.scoped(ctx, "Record", func(ctx context.Context) error {
		var err error
		source, err = c.client.Record(ctx, src)
		return err
	})
	if err != nil {
		return c.finish(session.Failure(prefix, err), err)
	}

	var created *datafed.Record
	err = c.remote(ctx, "CreateRecord", func(ctx context.Context) error {
		var err error
		created, err = c.client.CreateRecord(ctx, datafed.RecordSpec{
			Title:    source.Title,
			Metadata: source.Metadata,
			ParentID: dest,
		})
		return err
	})
	if err != nil {
		return c.finish(session.Failure(prefix, err), err)
	}

	err = c.remote(ctx, "MoveRecord", func(ctx context.Context) error {
		return c.client.MoveRecord(ctx, src, created.ID)
	})
	if err != nil {
		pf := &PartialFailure{CreatedID: created.ID, Err: err}
		c.log.Warn("transfer left a copy behind", "source", src, "created", created.ID, "error", err)
		return c.finish(session.Failure(prefix, pf), pf)
	}

	c.log.Info("record transferred", "source", src, "created", created.ID, "dest", dest)
	return c.finish(session.Success(map[string]string{"id": created.ID}, "Data transferred to new record ID: %s", created.ID), nil)
}

// ListProjects lists the projects visible to the user. The listing is kept
// apart from the session and from the record result.
func (c *Controller) ListProjects(ctx context.Context) session.Result {
	var projects []datafed.Project
	err := c.remote(ctx, "Projects", func(ctx context.Context) error {
		var err error
		projects, err = c.client.Projects(ctx)
		return err
	})
	if err != nil {
		c.projects = session.Result{
			Kind:    session.KindError,
			Message: err.Error(),
			Payload: map[string]string{"error": err.Error()},
		}
	} else {
		if projects == nil {
			projects = []datafed.Project{}
		}
		c.projects = session.Success(projects, "%d projects", len(projects))
	}
	c.lastErr = err
	c.hub.Publish(session.Event{Type: session.EventProjects, Session: c.sess.Snapshot(), Result: c.projects})
	return c.projects
}
