package datafed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateway is a small stand-in for the DataFed web gateway.
type gateway struct {
	mu      sync.Mutex
	scope   string
	records map[string]Record
	moves   [][2]string
	headers []http.Header
}

func newGateway(t *testing.T) (*gateway, *HTTPClient) {
	t.Helper()
	g := &gateway{records: map[string]Record{
		"d/1": {ID: "d/1", Title: "first", Metadata: `{"x":1}`},
	}}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			g.mu.Lock()
			g.headers = append(g.headers, req.Header.Clone())
			g.mu.Unlock()
			if req.URL.Path != "/api/usr/login" && req.Header.Get("Authorization") != "Bearer tok-1" {
				http.Error(w, `{"message":"session expired"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/api/usr/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["uid"] != "alice" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"bad password"}`))
			return
		}
		writeJSON(w, map[string]any{"token": "tok-1", "user": map[string]string{"uid": "u/alice", "name": "Alice"}})
	})
	r.Post("/api/usr/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/api/usr/context", func(w http.ResponseWriter, _ *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		scope := g.scope
		if scope == "" {
			scope = "u/alice"
		}
		writeJSON(w, map[string]string{"context": scope})
	})
	r.Post("/api/usr/context", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		g.mu.Lock()
		g.scope = body["context"]
		g.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/api/prj/list", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, itemList{Item: []Project{{ID: "p/a", Title: "A"}, {ID: "p/b", Title: "B"}}})
	})
	r.Get("/api/col/read", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("id") != RootCollection {
			http.Error(w, "no such collection", http.StatusNotFound)
			return
		}
		if req.URL.Query().Get("context") == "p/b" {
			writeJSON(w, itemList{Item: []Project{{ID: "c/b1"}}})
			return
		}
		writeJSON(w, itemList{Item: []Project{{ID: "c/a1"}, {ID: "c/a2"}}})
	})
	r.Post("/api/dat/create", func(w http.ResponseWriter, req *http.Request) {
		var spec RecordSpec
		_ = json.NewDecoder(req.Body).Decode(&spec)
		rec := Record{ID: "d/2", Title: spec.Title, Metadata: spec.Metadata, ParentID: spec.ParentID}
		g.mu.Lock()
		g.records[rec.ID] = rec
		g.mu.Unlock()
		writeJSON(w, dataReply{Data: []*Record{&rec}})
	})
	r.Get("/api/dat/view", func(w http.ResponseWriter, req *http.Request) {
		g.mu.Lock()
		rec, ok := g.records[req.URL.Query().Get("id")]
		g.mu.Unlock()
		if !ok {
			writeJSON(w, dataReply{})
			return
		}
		writeJSON(w, dataReply{Data: []*Record{&rec}})
	})
	r.Post("/api/dat/update", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		g.mu.Lock()
		rec := g.records[body["id"]]
		rec.Metadata = body["metadata"]
		g.records[body["id"]] = rec
		g.mu.Unlock()
		writeJSON(w, dataReply{Data: []*Record{&rec}})
	})
	r.Post("/api/dat/delete", func(w http.ResponseWriter, req *http.Request) {
		var body map[string][]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		g.mu.Lock()
		defer g.mu.Unlock()
		for _, id := range body["ids"] {
			if _, ok := g.records[id]; !ok {
				http.Error(w, "permission denied", http.StatusForbidden)
				return
			}
			delete(g.records, id)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/api/dat/move", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		g.mu.Lock()
		g.moves = append(g.moves, [2]string{body["id"], body["dest"]})
		g.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return g, NewHTTPClient(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPClientNeedsLogin(t *testing.T) {
	_, c := newGateway(t)
	ctx := context.Background()

	_, err := c.Projects(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = c.Record(ctx, "d/1")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.NoError(t, c.Logout(ctx))
}

func TestHTTPClientLogin(t *testing.T) {
	g, c := newGateway(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice", "wrong")
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, "bad password", err.Error())

	u, err := c.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u/alice", u.Username())

	scope, err := c.CurrentContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u/alice", scope)

	require.NoError(t, c.SetContext(ctx, "p/b"))
	scope, err = c.CurrentContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p/b", scope)

	g.mu.Lock()
	for _, h := range g.headers {
		assert.NotEmpty(t, h.Get("X-Request-ID"))
	}
	g.mu.Unlock()
}

func TestHTTPClientListing(t *testing.T) {
	_, c := newGateway(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	projects, err := c.Projects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Project{{ID: "p/a", Title: "A"}, {ID: "p/b", Title: "B"}}, projects)

	items, err := c.CollectionItems(ctx, RootCollection, "p/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"c/b1"}, items)

	_, err = c.CollectionItems(ctx, "c/missing", "p/a")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "no such collection", se.Message)
}

func TestHTTPClientRecords(t *testing.T) {
	g, c := newGateway(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	rec, err := c.CreateRecord(ctx, RecordSpec{Title: "new", Metadata: `{"y":2}`, ParentID: "c/a1"})
	require.NoError(t, err)
	assert.Equal(t, "d/2", rec.ID)
	assert.Equal(t, "c/a1", rec.ParentID)

	rec, err = c.Record(ctx, "d/1")
	require.NoError(t, err)
	assert.Equal(t, "first", rec.Title)

	_, err = c.Record(ctx, "d/404")
	assert.EqualError(t, err, "datafed: reply contained no record")

	rec, err = c.UpdateRecord(ctx, "d/1", `{"x":2}`)
	require.NoError(t, err)
	assert.Equal(t, `{"x":2}`, rec.Metadata)

	require.NoError(t, c.MoveRecord(ctx, "d/1", "d/2"))
	assert.Equal(t, [][2]string{{"d/1", "d/2"}}, g.moves)

	require.NoError(t, c.DeleteRecord(ctx, "d/1"))
	err = c.DeleteRecord(ctx, "d/1")
	assert.EqualError(t, err, "permission denied")
}

func TestHTTPClientLogoutDropsToken(t *testing.T) {
	_, c := newGateway(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Projects(ctx)
	assert.True(t, errors.Is(err, ErrNotLoggedIn))
}

func TestStatusErrorFallsBackToStatusText(t *testing.T) {
	se := statusError(http.StatusBadGateway, nil)
	assert.Equal(t, "Bad Gateway", se.Error())
	assert.Equal(t, "datafed: HTTP 500", (&StatusError{Code: 500}).Error())
}
