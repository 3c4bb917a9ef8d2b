package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tableflip.dev/fedash/pkg/commands/options"
	"tableflip.dev/fedash/pkg/config"
	"tableflip.dev/fedash/pkg/datafed"
	"tableflip.dev/fedash/pkg/datafed/fake"
)

func setup(t *testing.T) *fake.Client {
	t.Helper()
	f := fake.New()
	f.Users["alice"] = "secret"
	f.Context = "u/alice"
	f.ProjectList = []datafed.Project{{ID: "p/alpha", Title: "Alpha"}, {ID: "p/beta", Title: "Beta"}}
	f.Collections["p/alpha"] = []string{"c/1", "c/2"}
	f.Collections["p/beta"] = []string{"c/9"}

	origClient, origTTY := newClient, stdinIsTerminal
	newClient = func(*config.Config, *slog.Logger) datafed.Client { return f }
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		newClient, stdinIsTerminal = origClient, origTTY
	})
	return f
}

// run executes the command tree with a throwaway config file holding the
// test credentials.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "fedash.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("user: alice\npassword: secret\nlog:\n  level: error\n"), 0o600))

	var out, errOut bytes.Buffer
	cmd := New()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginPrintsSession(t *testing.T) {
	setup(t)

	out, err := run(t, "login", "-o", "json")
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "alice", s["currentUser"])
	assert.Equal(t, "p/alpha", s["selectedContext"])
	assert.Equal(t, "Login Successful!", s["status"])
}

func TestLoginFailureWithJSON(t *testing.T) {
	setup(t)

	out, err := run(t, "login", "--json", "--password", "wrong")
	assert.ErrorIs(t, err, options.ErrReported)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Contains(t, body["error"], "Invalid username or password: ")
}

func TestLoginFailureWithoutJSON(t *testing.T) {
	setup(t)

	_, err := run(t, "login", "--password", "wrong")
	require.Error(t, err)
	assert.NotErrorIs(t, err, options.ErrReported)
	assert.Contains(t, err.Error(), "Invalid username or password: ")
}

func TestCollectionsInContext(t *testing.T) {
	f := setup(t)

	out, err := run(t, "collections", "-C", "p/beta", "-o", "yaml")
	require.NoError(t, err)

	var body struct {
		Items    []string `yaml:"items"`
		Selected string   `yaml:"selected"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &body))
	assert.Equal(t, []string{"c/9"}, body.Items)
	assert.Equal(t, "c/9", body.Selected)
	assert.Equal(t, 1, f.Calls(fake.OpLogout))
}

func TestUnknownContext(t *testing.T) {
	setup(t)

	_, err := run(t, "contexts", "-C", "p/nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `select context "p/nope"`)
}

func TestProjects(t *testing.T) {
	setup(t)

	out, err := run(t, "projects", "-o", "json")
	require.NoError(t, err)

	var projects []datafed.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	assert.Len(t, projects, 2)
}

func TestRecordCreateDefaultsToSelectedCollection(t *testing.T) {
	f := setup(t)

	out, err := run(t, "record", "create", "-t", "run 7", "-m", `{"temp": 4}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Record created: ")

	ids := f.RecordIDs()
	require.Len(t, ids, 1)
	assert.Equal(t, "c/1", f.Records[ids[0]].ParentID)
}

func TestRecordCreateFromFile(t *testing.T) {
	f := setup(t)
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from": "file"}`), 0o600))

	_, err := run(t, "record", "create", "-t", "run 8", "-f", path, "-p", "c/2")
	require.NoError(t, err)

	ids := f.RecordIDs()
	require.Len(t, ids, 1)
	assert.Equal(t, `{"from": "file"}`, f.Records[ids[0]].Metadata)
	assert.Equal(t, "c/2", f.Records[ids[0]].ParentID)
}

func TestRecordCreateWarningExitsNonZero(t *testing.T) {
	f := setup(t)

	out, err := run(t, "record", "create", "-t", "run 9")
	assert.ErrorIs(t, err, options.ErrReported)
	assert.Contains(t, out, "Title and metadata are required")
	assert.Zero(t, f.Calls(fake.OpCreateRecord))
}

func TestRecordRead(t *testing.T) {
	f := setup(t)
	f.AddRecord(&datafed.Record{ID: "d/42", Title: "answer", Metadata: `{"a":1}`})

	out, err := run(t, "record", "read", "42", "-o", "json")
	require.NoError(t, err)

	var r struct {
		Kind    string         `json:"kind"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "success", r.Kind)
	assert.Equal(t, "answer", r.Payload["title"])
	assert.Equal(t, "d/42", r.Payload["id"])
}

func TestRecordReadNeedsID(t *testing.T) {
	setup(t)

	_, err := run(t, "record", "read")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestRecordDeleteFailure(t *testing.T) {
	f := setup(t)
	f.Fail(fake.OpDeleteRecord, errors.New("permission denied"))

	out, err := run(t, "record", "delete", "42")
	assert.ErrorIs(t, err, options.ErrReported)
	assert.Contains(t, out, "Failed to delete record: permission denied")
}

func TestRecordUpdate(t *testing.T) {
	f := setup(t)
	f.AddRecord(&datafed.Record{ID: "d/42", Title: "answer"})

	out, err := run(t, "record", "update", "d/42", "-m", `{"b":2}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Record updated: ")
	assert.Equal(t, `{"b":2}`, f.Records["d/42"].Metadata)
}

func TestTransfer(t *testing.T) {
	f := setup(t)
	f.AddRecord(&datafed.Record{ID: "d/42", Title: "answer", Metadata: `{"a":1}`})

	out, err := run(t, "transfer", "42", "c/9")
	require.NoError(t, err)
	assert.Contains(t, out, "Data transferred to new record ID: d/1001")
	assert.Equal(t, []string{"d/1001"}, f.RecordIDs())
	assert.Equal(t, "c/9", f.Records["d/1001"].ParentID)
}

func TestBadOutputFormat(t *testing.T) {
	setup(t)

	_, err := run(t, "projects", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "xml"`)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}

func TestPromptsForMissingPassword(t *testing.T) {
	setup(t)
	stdinIsTerminal = func() bool { return true }
	origPrompt := prompt
	t.Cleanup(func() { prompt = origPrompt })

	var asked []string
	prompt = func(label string, mask bool) (string, error) {
		asked = append(asked, label)
		assert.True(t, mask)
		return "secret", nil
	}

	cfg := filepath.Join(t.TempDir(), "fedash.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("user: alice\n"), 0o600))
	var out bytes.Buffer
	cmd := New()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "contexts", "-o", "json"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"Password"}, asked)
}

func TestNoPromptFlag(t *testing.T) {
	setup(t)
	stdinIsTerminal = func() bool { return true }
	origPrompt := prompt
	t.Cleanup(func() { prompt = origPrompt })
	prompt = func(string, bool) (string, error) {
		t.Fatal("prompted")
		return "", nil
	}

	cfg := filepath.Join(t.TempDir(), "fedash.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("user: alice\n"), 0o600))
	cmd := New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "--no-prompt", "contexts"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Username and password are required")
}
