package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	homedir "github.com/mitchellh/go-homedir"

	"tableflip.dev/fedash/pkg/session"
)

// LoadMetadataFile reads a JSON document into the create form's metadata.
// The form is left alone when the file cannot be read or is not JSON.
func (c *Controller) LoadMetadataFile(path string) error {
	content, err := ReadMetadataFile(path)
	if err != nil {
		c.lastErr = err
		return err
	}
	c.forms.Create.Metadata = content
	c.lastErr = nil
	c.log.Debug("metadata loaded", "path", path, "bytes", len(content))
	c.hub.Publish(session.Event{Type: session.EventForms, Session: c.sess.Snapshot(), Result: c.result})
	return nil
}

// ReadMetadataFile returns the contents of path when they are valid JSON.
func ReadMetadataFile(path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("metadata file: %w", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("metadata file: %w", err)
	}
	if !json.Valid(b) {
		return "", &session.ValidationError{Form: "create", Message: "Invalid JSON file"}
	}
	return string(b), nil
}

// MetadataChange is sent when a watched metadata file is written.
type MetadataChange struct {
	Path string
}

// WatchMetadataFile reports writes to path until ctx is cancelled. The
// parent directory is watched so editors that replace the file are seen.
// Changes are delivered on a channel; the receiver applies them with
// LoadMetadataFile on the goroutine that owns the controller.
func WatchMetadataFile(ctx context.Context, path string) (<-chan MetadataChange, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("watch metadata: %w", err)
	}
	p, err = filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("watch metadata: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch metadata: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch metadata: %w", err)
	}

	out := make(chan MetadataChange, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		// Editors often emit several events per save.
		const settle = 50 * time.Millisecond
		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != p {
					continue
				}
				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(settle)
				} else {
					timer.Reset(settle)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				select {
				case out <- MetadataChange{Path: p}:
				default:
				}
			}
		}
	}()
	return out, nil
}
