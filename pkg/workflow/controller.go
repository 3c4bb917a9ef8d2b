// Package workflow drives a dashboard session: login, context discovery,
// collection listing and the record operations that run in the selected
// context.
//
// A Controller is not safe for concurrent use. Presentation layers dispatch
// one operation at a time.
package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tableflip.dev/fedash/pkg/datafed"
	"tableflip.dev/fedash/pkg/session"
)

const (
	// DefaultTimeout bounds each remote call.
	DefaultTimeout = 30 * time.Second

	statusLoginOK  = "Login Successful!"
	statusLoginBad = "Invalid username or password: %v"
	statusLogout   = "Logged out successfully!"
)

// Controller owns the session, the forms and the last result.
type Controller struct {
	client  datafed.Client
	log     *slog.Logger
	hub     *session.Hub
	timeout time.Duration
	root    string

	sess     *session.Session
	forms    session.Forms
	result   session.Result
	projects session.Result
	lastErr  error
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout bounds every remote call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithHub publishes change events to h.
func WithHub(h *session.Hub) Option {
	return func(c *Controller) {
		if h != nil {
			c.hub = h
		}
	}
}

// WithRootCollection changes the collection listed for each context.
func WithRootCollection(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.root = id
		}
	}
}

// New returns a logged out controller using client.
func New(client datafed.Client, opts ...Option) *Controller {
	c := &Controller{
		client:  client,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		hub:     session.NewHub(),
		timeout: DefaultTimeout,
		root:    datafed.RootCollection,
		sess:    session.New(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns a copy of the session.
func (c *Controller) Session() session.Session { return c.sess.Snapshot() }

// Forms returns the last typed value of every input.
func (c *Controller) Forms() session.Forms { return c.forms }

// Result returns the result of the last record operation.
func (c *Controller) Result() session.Result { return c.result }

// Projects returns the result of the last project listing.
func (c *Controller) Projects() session.Result { return c.projects }

// Err returns the error behind the last operation, if any.
func (c *Controller) Err() error { return c.lastErr }

// Hub returns the event hub the controller publishes to.
func (c *Controller) Hub() *session.Hub { return c.hub }

func (c *Controller) publish(t session.EventType) {
	c.hub.Publish(session.Event{Type: t, Session: c.sess.Snapshot(), Result: c.result})
}

// remote runs fn with the configured bound and turns failures into
// RemoteErrors.
func (c *Controller) remote(ctx context.Context, op string, fn func(context.Context) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	c.log.Debug("remote call", "op", op, "context", c.sess.SelectedContext)
	if err := fn(ctx); err != nil {
		c.log.Warn("remote call failed", "op", op, "error", err)
		return &RemoteError{Op: op, Err: err}
	}
	return nil
}

// scoped sets the remote context when one is selected and then runs fn.
// Without a selected context the call proceeds in whatever context the
// remote side already has.
func (c *Controller) scoped(ctx context.Context, op string, fn func(context.Context) error) error {
	if scope := c.sess.SelectedContext; scope != "" {
		if err := c.remote(ctx, "SetContext", func(ctx context.Context) error {
			return c.client.SetContext(ctx, scope)
		}); err != nil {
			return err
		}
	}
	return c.remote(ctx, op, fn)
}

// finish stores r as the current result and publishes it.
func (c *Controller) finish(r session.Result, err error) session.Result {
	c.result = r
	c.lastErr = err
	c.publish(session.EventResult)
	return r
}

// Login authenticates and discovers the contexts the user can work in. On
// success the first context is selected and its collections listed.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	c.forms.Login = session.LoginForm{Username: username, Password: password}
	if err := c.forms.Login.Validate(); err != nil {
		c.sess.Status = fmt.Sprintf(statusLoginBad, err)
		c.lastErr = err
		c.publish(session.EventSession)
		return err
	}

	var (
		user    *datafed.User
		current string
	)
	err := c.remote(ctx, "Login", func(ctx context.Context) error {
		var err error
		user, err = c.client.Login(ctx, username, password)
		return err
	})
	if err == nil {
		err = c.remote(ctx, "CurrentContext", func(ctx context.Context) error {
			var err error
			current, err = c.client.CurrentContext(ctx)
			return err
		})
	}
	if err != nil {
		c.sess.Status = fmt.Sprintf(statusLoginBad, err)
		c.lastErr = err
		c.publish(session.EventSession)
		return err
	}

	var projects []datafed.Project
	perr := c.remote(ctx, "Projects", func(ctx context.Context) error {
		var err error
		projects, err = c.client.Projects(ctx)
		return err
	})

	c.sess.SignIn(user.Username(), current)
	c.sess.DismissLogin()
	c.lastErr = nil
	if perr != nil {
		c.sess.SetContexts([]string{session.Diagnostic(perr)})
	} else {
		ids := make([]string, 0, len(projects))
		for _, p := range projects {
			ids = append(ids, p.ID)
		}
		c.sess.SetContexts(ids)
	}
	// The first entry is selected even when it is the listing diagnostic.
	if len(c.sess.AvailableContexts) > 0 {
		if err := c.selectContext(ctx, c.sess.AvailableContexts[0]); err != nil {
			c.lastErr = err
		}
	}
	c.log.Info("logged in", "user", c.sess.CurrentUser, "contexts", len(c.sess.AvailableContexts))
	c.sess.Status = statusLoginOK
	c.publish(session.EventSession)
	return nil
}

// Logout ends the remote session and resets local state. Remote failures
// are logged and otherwise ignored.
func (c *Controller) Logout(ctx context.Context) {
	if c.sess.Authenticated {
		if err := c.remote(ctx, "Logout", c.client.Logout); err != nil {
			c.log.Warn("logout failed", "error", err)
		}
	}
	c.sess.Reset()
	c.forms.ClearCredentials()
	c.lastErr = nil
	c.sess.Status = statusLogout
	c.publish(session.EventSession)
}

// SelectContext selects one of the offered contexts and lists its
// collections.
func (c *Controller) SelectContext(ctx context.Context, name string) error {
	err := c.selectContext(ctx, name)
	c.lastErr = err
	c.publish(session.EventSession)
	return err
}

func (c *Controller) selectContext(ctx context.Context, name string) error {
	if err := c.sess.SelectContext(name); err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	var items []string
	err := c.remote(ctx, "CollectionItems", func(ctx context.Context) error {
		var err error
		items, err = c.client.CollectionItems(ctx, c.root, name)
		return err
	})
	if err != nil {
		c.sess.SetCollectionError(err)
		return err
	}
	c.sess.SetCollections(items)
	c.log.Debug("collections listed", "context", name, "count", len(items))
	return nil
}

// SelectCollection selects one of the offered collections.
func (c *Controller) SelectCollection(name string) error {
	if err := c.sess.SelectCollection(name); err != nil {
		return err
	}
	c.publish(session.EventSession)
	return nil
}

// RequestLogin raises the login panel flag.
func (c *Controller) RequestLogin() {
	c.sess.RequestLogin()
	c.publish(session.EventSession)
}

// DismissLogin lowers the login panel flag.
func (c *Controller) DismissLogin() {
	c.sess.DismissLogin()
	c.publish(session.EventSession)
}
