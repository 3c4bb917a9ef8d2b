// Package mcp provides the Model Context Protocol server integration for
// fedash.
package mcp

import (
	"context"
	"sync"

	"tableflip.dev/fedash/pkg/session"
	"tableflip.dev/fedash/pkg/workflow"
)

// Service serializes MCP tool calls onto one controller. MCP clients may
// issue calls concurrently; the controller runs one operation at a time.
type Service struct {
	mu sync.Mutex
	c  *workflow.Controller
}

// NewService wraps c.
func NewService(c *workflow.Controller) *Service {
	return &Service{c: c}
}

// SessionView is the session plus the last record result.
type SessionView struct {
	Session session.Session `json:"session"`
	Result  session.Result  `json:"result"`
}

func (s *Service) view() SessionView {
	return SessionView{Session: s.c.Session(), Result: s.c.Result()}
}

// Login logs in and returns the session.
func (s *Service) Login(ctx context.Context, username, password string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.c.Login(ctx, username, password)
	return s.view(), err
}

// Logout ends the session.
func (s *Service) Logout(ctx context.Context) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Logout(ctx)
	return s.view()
}

// Session returns the current session.
func (s *Service) Session() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// SelectContext selects a context and lists its collections.
func (s *Service) SelectContext(ctx context.Context, name string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.c.SelectContext(ctx, name)
	return s.view(), err
}

// SelectCollection selects a collection.
func (s *Service) SelectCollection(name string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.c.SelectCollection(name)
	return s.view(), err
}

// Projects lists projects.
func (s *Service) Projects(ctx context.Context) session.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.ListProjects(ctx)
}

// Create creates a record.
func (s *Service) Create(ctx context.Context, title, metadata, parent string) session.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.CreateRecord(ctx, title, metadata, parent)
}

// Read reads a record.
func (s *Service) Read(ctx context.Context, id string) session.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.ReadRecord(ctx, id)
}

// Update updates a record's metadata.
func (s *Service) Update(ctx context.Context, id, metadata string) session.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.UpdateRecord(ctx, id, metadata)
}

// Delete deletes a record.
func (s *Service) Delete(ctx context.Context, id string) session.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteRecord(ctx, id)
}

// Transfer transfers a record into another collection.
func (s *Service) Transfer(ctx context.Context, source, dest string) session.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.TransferData(ctx, source, dest)
}
