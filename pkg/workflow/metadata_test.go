package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/fedash/pkg/session"
)

func TestLoadMetadataFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"temperature": 4}`), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte(`{temperature`), 0o600))

	c := New(newFake())
	require.NoError(t, c.LoadMetadataFile(good))
	assert.Equal(t, `{"temperature": 4}`, c.Forms().Create.Metadata)

	err := c.LoadMetadataFile(bad)
	assert.True(t, IsValidation(err))
	assert.EqualError(t, err, "Invalid JSON file")
	assert.Equal(t, `{"temperature": 4}`, c.Forms().Create.Metadata)

	err = c.LoadMetadataFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	assert.Equal(t, err, c.Err())
}

func TestLoadMetadataFilePublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	hub := session.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := hub.Subscribe(ctx)

	c := New(newFake(), WithHub(hub))
	require.NoError(t, c.LoadMetadataFile(path))
	ev := <-events
	assert.Equal(t, session.EventForms, ev.Type)
}

func TestWatchMetadataFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := WatchMetadataFile(ctx, path)
	require.NoError(t, err)

	// other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(path, []byte(`{"v": 2}`), 0o600))

	select {
	case ch := <-changes:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, ch.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatchMetadataFileMissingDir(t *testing.T) {
	_, err := WatchMetadataFile(context.Background(), filepath.Join(t.TempDir(), "nope", "m.json"))
	assert.Error(t, err)
}
