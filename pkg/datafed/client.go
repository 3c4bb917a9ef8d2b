// Package datafed is the remote client adapter for the DataFed data
// management service: the operations fedash needs, their value types, and the
// error classes callers tell apart.
package datafed

import (
	"context"
	"errors"
	"fmt"
)

// RootCollection is the id of the top-level collection of every context.
const RootCollection = "root"

// Client is the capability set fedash consumes from the remote service.
type Client interface {
	Login(ctx context.Context, username, password string) (*User, error)
	Logout(ctx context.Context) error
	CurrentContext(ctx context.Context) (string, error)
	SetContext(ctx context.Context, scope string) error
	Projects(ctx context.Context) ([]Project, error)
	CollectionItems(ctx context.Context, collectionID, scope string) ([]string, error)
	CreateRecord(ctx context.Context, spec RecordSpec) (*Record, error)
	Record(ctx context.Context, id string) (*Record, error)
	UpdateRecord(ctx context.Context, id, metadata string) (*Record, error)
	DeleteRecord(ctx context.Context, id string) error
	MoveRecord(ctx context.Context, sourceID, destinationID string) error
}

// User is the identity returned by a successful login.
type User struct {
	ID   string `json:"uid"`
	Name string `json:"name,omitempty"`
}

// Username is the display name used for the session.
func (u *User) Username() string {
	if u == nil {
		return ""
	}
	if u.ID != "" {
		return u.ID
	}
	return u.Name
}

// Project is a project the user can act under. Projects double as contexts.
type Project struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// RecordSpec holds what is needed to create a data record.
type RecordSpec struct {
	Title    string `json:"title"`
	Metadata string `json:"metadata,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

// AuthError reports rejected credentials.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "authentication failed"
	}
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// ErrNotLoggedIn is returned by operations that need a session token.
var ErrNotLoggedIn = errors.New("datafed: not logged in")

// StatusError is a non-success reply from the service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("datafed: HTTP %d", e.Code)
	}
	return e.Message
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
