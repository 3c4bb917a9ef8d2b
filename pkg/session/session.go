// Package session holds the in-memory state of one dashboard session: who is
// logged in, which context and collection are selected, the per-operation
// form inputs, and the result of the last record operation.
package session

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// NotLoggedIn is the user shown while logged out.
	NotLoggedIn = "Not Logged In"
	// NoContext is the context shown while logged out.
	NoContext = "No Context"
)

// ErrNotAvailable is returned when selecting a context or collection that is
// not on offer.
var ErrNotAvailable = errors.New("session: selection not available")

// Session is the state of one logged in (or logged out) user.
//
// SelectedContext is empty or one of AvailableContexts; SelectedCollection is
// empty or one of AvailableCollections. The mutators keep both true.
type Session struct {
	Authenticated        bool     `json:"authenticated" yaml:"authenticated"`
	CurrentUser          string   `json:"currentUser" yaml:"currentUser"`
	CurrentContext       string   `json:"currentContext" yaml:"currentContext"`
	AvailableContexts    []string `json:"availableContexts" yaml:"availableContexts"`
	SelectedContext      string   `json:"selectedContext,omitempty" yaml:"selectedContext,omitempty"`
	AvailableCollections []string `json:"availableCollections" yaml:"availableCollections"`
	SelectedCollection   string   `json:"selectedCollection,omitempty" yaml:"selectedCollection,omitempty"`
	Status               string   `json:"status,omitempty" yaml:"status,omitempty"`
	LoginRequested       bool     `json:"loginRequested" yaml:"loginRequested"`
}

// New returns a logged out session.
func New() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset returns the session to the logged out defaults.
func (s *Session) Reset() {
	*s = Session{
		CurrentUser:          NotLoggedIn,
		CurrentContext:       NoContext,
		AvailableContexts:    []string{},
		AvailableCollections: []string{},
	}
}

// SignIn records a successful login.
func (s *Session) SignIn(user, current string) {
	s.Authenticated = true
	s.CurrentUser = user
	s.CurrentContext = current
}

// SetContexts replaces the offered contexts and clears every selection.
func (s *Session) SetContexts(contexts []string) {
	s.AvailableContexts = append([]string{}, contexts...)
	s.SelectedContext = ""
	s.AvailableCollections = []string{}
	s.SelectedCollection = ""
}

// SelectContext marks name as the selected context. Collections are cleared
// until the caller lists the new context's collections.
func (s *Session) SelectContext(name string) error {
	if name != "" && !slices.Contains(s.AvailableContexts, name) {
		return fmt.Errorf("context %q: %w", name, ErrNotAvailable)
	}
	s.SelectedContext = name
	s.AvailableCollections = []string{}
	s.SelectedCollection = ""
	return nil
}

// SetCollections replaces the offered collections and selects the first one.
func (s *Session) SetCollections(collections []string) {
	s.AvailableCollections = append([]string{}, collections...)
	s.SelectedCollection = ""
	if len(s.AvailableCollections) > 0 {
		s.SelectedCollection = s.AvailableCollections[0]
	}
}

// SetCollectionError replaces the offered collections with a single
// diagnostic entry and clears the selection.
func (s *Session) SetCollectionError(err error) {
	s.AvailableCollections = []string{Diagnostic(err)}
	s.SelectedCollection = ""
}

// SelectCollection marks name as the selected collection.
func (s *Session) SelectCollection(name string) error {
	if name != "" && !slices.Contains(s.AvailableCollections, name) {
		return fmt.Errorf("collection %q: %w", name, ErrNotAvailable)
	}
	s.SelectedCollection = name
	return nil
}

// RequestLogin raises the login panel flag.
func (s *Session) RequestLogin() { s.LoginRequested = true }

// DismissLogin lowers the login panel flag.
func (s *Session) DismissLogin() { s.LoginRequested = false }

// HasContext reports whether a context is selected.
func (s *Session) HasContext() bool { return s.SelectedContext != "" }

// Snapshot returns a deep copy that is safe to hand to other goroutines.
func (s *Session) Snapshot() Session {
	cp := *s
	cp.AvailableContexts = append([]string{}, s.AvailableContexts...)
	cp.AvailableCollections = append([]string{}, s.AvailableCollections...)
	return cp
}

// Diagnostic is the list entry shown in place of a listing that failed.
func Diagnostic(err error) string {
	return "Error: " + err.Error()
}
