// Package fake provides an in-memory datafed.Client for tests.
package fake

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"tableflip.dev/fedash/pkg/datafed"
)

// Operation names used by Calls and Fail.
const (
	OpLogin           = "Login"
	OpLogout          = "Logout"
	OpCurrentContext  = "CurrentContext"
	OpSetContext      = "SetContext"
	OpProjects        = "Projects"
	OpCollectionItems = "CollectionItems"
	OpCreateRecord    = "CreateRecord"
	OpRecord          = "Record"
	OpUpdateRecord    = "UpdateRecord"
	OpDeleteRecord    = "DeleteRecord"
	OpMoveRecord      = "MoveRecord"
)

// ErrNotFound is returned for unknown record ids.
var ErrNotFound = errors.New("record not found")

// Call is one recorded invocation.
type Call struct {
	Op   string
	Args []string
}

// Client is an in-memory datafed.Client. The zero value is not usable; call
// New.
type Client struct {
	mu sync.Mutex

	// Users maps usernames to passwords.
	Users map[string]string
	// Context is returned by CurrentContext after login.
	Context string
	// ProjectList is returned by Projects.
	ProjectList []datafed.Project
	// Collections maps a context to the ids under its root collection.
	Collections map[string][]string
	// Records holds stored records by id.
	Records map[string]*datafed.Record

	failures map[string]error
	calls    []Call
	counter  int
	user     string
	scope    string
}

// New returns an empty fake.
func New() *Client {
	return &Client{
		Users:       map[string]string{},
		Collections: map[string][]string{},
		Records:     map[string]*datafed.Record{},
		failures:    map[string]error{},
	}
}

var _ datafed.Client = (*Client)(nil)

// Fail makes every later call of op return err. A nil err clears the fault.
func (c *Client) Fail(op string, err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, op)
	} else {
		c.failures[op] = err
	}
	return c
}

// AddRecord stores r and returns it.
func (c *Client) AddRecord(r *datafed.Record) *datafed.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *r
	c.Records[cp.ID] = &cp
	return &cp
}

// Calls returns the number of calls made to op, or to every operation when op
// is empty.
func (c *Client) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if op == "" {
		return len(c.calls)
	}
	n := 0
	for _, call := range c.calls {
		if call.Op == op {
			n++
		}
	}
	return n
}

// History returns every recorded call in order.
func (c *Client) History() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Scope is the context last set through SetContext.
func (c *Client) Scope() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

// Reset forgets recorded calls.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

func (c *Client) record(op string, args ...string) error {
	c.calls = append(c.calls, Call{Op: op, Args: args})
	if err := c.failures[op]; err != nil {
		return err
	}
	return nil
}

func (c *Client) Login(_ context.Context, username, password string) (*datafed.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpLogin, username); err != nil {
		return nil, err
	}
	if pw, ok := c.Users[username]; !ok || pw != password {
		return nil, &datafed.AuthError{Username: username, Err: errors.New("invalid credentials")}
	}
	c.user = username
	return &datafed.User{ID: username}, nil
}

func (c *Client) Logout(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = ""
	c.scope = ""
	return c.record(OpLogout)
}

func (c *Client) CurrentContext(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpCurrentContext); err != nil {
		return "", err
	}
	if c.scope != "" {
		return c.scope, nil
	}
	if c.Context != "" {
		return c.Context, nil
	}
	return "u/" + c.user, nil
}

func (c *Client) SetContext(_ context.Context, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpSetContext, scope); err != nil {
		return err
	}
	c.scope = scope
	return nil
}

func (c *Client) Projects(context.Context) ([]datafed.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpProjects); err != nil {
		return nil, err
	}
	return append([]datafed.Project(nil), c.ProjectList...), nil
}

func (c *Client) CollectionItems(_ context.Context, collectionID, scope string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpCollectionItems, collectionID, scope); err != nil {
		return nil, err
	}
	if collectionID != datafed.RootCollection {
		return nil, fmt.Errorf("collection %q not found", collectionID)
	}
	return append([]string(nil), c.Collections[scope]...), nil
}

func (c *Client) CreateRecord(_ context.Context, spec datafed.RecordSpec) (*datafed.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpCreateRecord, spec.Title, spec.ParentID); err != nil {
		return nil, err
	}
	c.counter++
	r := &datafed.Record{
		ID:       fmt.Sprintf("d/%d", 1000+c.counter),
		Title:    spec.Title,
		Metadata: spec.Metadata,
		ParentID: spec.ParentID,
		Owner:    "u/" + c.user,
		Creator:  "u/" + c.user,
	}
	c.Records[r.ID] = r
	cp := *r
	return &cp, nil
}

func (c *Client) Record(_ context.Context, id string) (*datafed.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpRecord, id); err != nil {
		return nil, err
	}
	r, ok := c.Records[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (c *Client) UpdateRecord(_ context.Context, id, metadata string) (*datafed.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpUpdateRecord, id); err != nil {
		return nil, err
	}
	r, ok := c.Records[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	r.Metadata = metadata
	cp := *r
	return &cp, nil
}

func (c *Client) DeleteRecord(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpDeleteRecord, id); err != nil {
		return err
	}
	if _, ok := c.Records[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	delete(c.Records, id)
	return nil
}

func (c *Client) MoveRecord(_ context.Context, sourceID, destinationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(OpMoveRecord, sourceID, destinationID); err != nil {
		return err
	}
	if _, ok := c.Records[sourceID]; !ok {
		return fmt.Errorf("%s: %w", sourceID, ErrNotFound)
	}
	if _, ok := c.Records[destinationID]; !ok {
		return fmt.Errorf("%s: %w", destinationID, ErrNotFound)
	}
	delete(c.Records, sourceID)
	return nil
}

// RecordIDs lists stored record ids in order.
func (c *Client) RecordIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.Records))
	for id := range c.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// String summarizes recorded calls, handy in failure messages.
func (c *Client) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	parts := make([]string, 0, len(c.calls))
	for _, call := range c.calls {
		parts = append(parts, call.Op+"("+strings.Join(call.Args, ",")+")")
	}
	return strings.Join(parts, " ")
}
