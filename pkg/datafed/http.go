package datafed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultEndpoint is the public DataFed web gateway.
	DefaultEndpoint = "https://datafed.ornl.gov"

	defaultTimeout = 30 * time.Second
)

// HTTPClient talks to the DataFed web gateway.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	mu    sync.Mutex
	token string
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.httpClient = c }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(h *HTTPClient) { h.log = l }
}

// NewHTTPClient creates a client for the gateway at endpoint.
func NewHTTPClient(endpoint string, opts ...HTTPOption) *HTTPClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	h := &HTTPClient{
		baseURL: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

var _ Client = (*HTTPClient)(nil)

type apiError struct {
	Message string `json:"message"`
}

type itemList struct {
	Item []Project `json:"item"`
}

type dataReply struct {
	Data []*Record `json:"data"`
}

func (h *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	u := h.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	h.mu.Lock()
	token := h.token
	h.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("datafed request", "method", method, "path", path, "request_id", reqID)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.log.Debug("datafed error", "path", path, "status", resp.StatusCode, "request_id", reqID)
		return statusError(resp.StatusCode, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func statusError(code int, body []byte) *StatusError {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Message != "" {
		return &StatusError{Code: code, Message: ae.Message}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &StatusError{Code: code, Message: msg}
}

func (h *HTTPClient) requireToken() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.token == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// Login authenticates and keeps the session token for later calls.
func (h *HTTPClient) Login(ctx context.Context, username, password string) (*User, error) {
	var reply struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	body := map[string]string{"uid": username, "password": password}
	if err := h.do(ctx, http.MethodPost, "/api/usr/login", nil, body, &reply); err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
			return nil, &AuthError{Username: username, Err: se}
		}
		return nil, err
	}
	if reply.Token == "" {
		return nil, &AuthError{Username: username, Err: errors.New("no session token issued")}
	}
	h.mu.Lock()
	h.token = reply.Token
	h.mu.Unlock()
	if reply.User.ID == "" {
		reply.User.ID = username
	}
	return &reply.User, nil
}

// Logout ends the session. The local token is dropped even when the call
// fails.
func (h *HTTPClient) Logout(ctx context.Context) error {
	defer func() {
		h.mu.Lock()
		h.token = ""
		h.mu.Unlock()
	}()
	if err := h.requireToken(); err != nil {
		return nil
	}
	return h.do(ctx, http.MethodPost, "/api/usr/logout", nil, nil, nil)
}

func (h *HTTPClient) CurrentContext(ctx context.Context) (string, error) {
	if err := h.requireToken(); err != nil {
		return "", err
	}
	var reply struct {
		Context string `json:"context"`
	}
	if err := h.do(ctx, http.MethodGet, "/api/usr/context", nil, nil, &reply); err != nil {
		return "", err
	}
	return reply.Context, nil
}

func (h *HTTPClient) SetContext(ctx context.Context, scope string) error {
	if err := h.requireToken(); err != nil {
		return err
	}
	return h.do(ctx, http.MethodPost, "/api/usr/context", nil, map[string]string{"context": scope}, nil)
}

func (h *HTTPClient) Projects(ctx context.Context) ([]Project, error) {
	if err := h.requireToken(); err != nil {
		return nil, err
	}
	var reply itemList
	if err := h.do(ctx, http.MethodGet, "/api/prj/list", nil, nil, &reply); err != nil {
		return nil, err
	}
	return reply.Item, nil
}

func (h *HTTPClient) CollectionItems(ctx context.Context, collectionID, scope string) ([]string, error) {
	if err := h.requireToken(); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("id", collectionID)
	if scope != "" {
		q.Set("context", scope)
	}
	var reply itemList
	if err := h.do(ctx, http.MethodGet, "/api/col/read", q, nil, &reply); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(reply.Item))
	for _, it := range reply.Item {
		ids = append(ids, it.ID)
	}
	return ids, nil
}

func (h *HTTPClient) CreateRecord(ctx context.Context, spec RecordSpec) (*Record, error) {
	if err := h.requireToken(); err != nil {
		return nil, err
	}
	var reply dataReply
	if err := h.do(ctx, http.MethodPost, "/api/dat/create", nil, spec, &reply); err != nil {
		return nil, err
	}
	return firstRecord(reply)
}

func (h *HTTPClient) Record(ctx context.Context, id string) (*Record, error) {
	if err := h.requireToken(); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("id", id)
	var reply dataReply
	if err := h.do(ctx, http.MethodGet, "/api/dat/view", q, nil, &reply); err != nil {
		return nil, err
	}
	return firstRecord(reply)
}

func (h *HTTPClient) UpdateRecord(ctx context.Context, id, metadata string) (*Record, error) {
	if err := h.requireToken(); err != nil {
		return nil, err
	}
	body := map[string]string{"id": id, "metadata": metadata}
	var reply dataReply
	if err := h.do(ctx, http.MethodPost, "/api/dat/update", nil, body, &reply); err != nil {
		return nil, err
	}
	return firstRecord(reply)
}

func (h *HTTPClient) DeleteRecord(ctx context.Context, id string) error {
	if err := h.requireToken(); err != nil {
		return err
	}
	return h.do(ctx, http.MethodPost, "/api/dat/delete", nil, map[string][]string{"ids": {id}}, nil)
}

func (h *HTTPClient) MoveRecord(ctx context.Context, sourceID, destinationID string) error {
	if err := h.requireToken(); err != nil {
		return err
	}
	body := map[string]string{"id": sourceID, "dest": destinationID}
	return h.do(ctx, http.MethodPost, "/api/dat/move", nil, body, nil)
}

func firstRecord(reply dataReply) (*Record, error) {
	if len(reply.Data) == 0 || reply.Data[0] == nil {
		return nil, errors.New("datafed: reply contained no record")
	}
	return reply.Data[0], nil
}
