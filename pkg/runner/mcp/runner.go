package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/fedash/pkg/workflow"
)

// Transport selects how the MCP server is exposed.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

const (
	defaultEndpoint   = "/mcp"
	defaultListenAddr = "127.0.0.1:8080"
	shutdownGrace     = 5 * time.Second
)

// Runner serves one controller over MCP until its context is done.
type Runner struct {
	Controller *workflow.Controller
	Name       string
	Version    string
	Log        *slog.Logger

	Transport Transport
	// ListenAddr and Endpoint apply to the HTTP transport.
	ListenAddr  string
	Endpoint    string
	TLSCertFile string
	TLSKeyFile  string
	// OnListening is called once the HTTP listener is bound.
	OnListening func(net.Addr)
}

// NewServer builds the MCP server with every fedash tool and the session
// resource registered.
func NewServer(svc *Service, name, version string) *server.MCPServer {
	if name == "" {
		name = "fedash"
	}
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Log in to DataFed, pick a context and collection, then create, read, update, delete and transfer data records."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

// EndpointPath returns the HTTP endpoint with a leading slash.
func (r Runner) EndpointPath() string {
	p := strings.TrimSpace(r.Endpoint)
	if p == "" {
		return defaultEndpoint
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Handler routes the endpoint path to the streamable HTTP transport of srv.
func (r Runner) Handler(srv *server.MCPServer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(r.EndpointPath(), server.NewStreamableHTTPServer(srv))
	return mux
}

// Do serves until ctx is done. The stdio transport returns when stdin closes.
func (r Runner) Do(ctx context.Context) error {
	if r.Controller == nil {
		return errors.New("mcp runner requires a controller")
	}
	if (r.TLSCertFile == "") != (r.TLSKeyFile == "") {
		return errors.New("both http tls cert and key must be provided")
	}
	log := r.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := NewServer(NewService(r.Controller), r.Name, r.Version)

	switch r.Transport {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv, log)
	case TransportStdio:
		log.Debug("serving mcp on stdio")
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", r.Transport)
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer, log *slog.Logger) error {
	addr := r.ListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if r.OnListening != nil {
		r.OnListening(ln.Addr())
	}

	httpSrv := &http.Server{Handler: r.Handler(srv), ReadHeaderTimeout: 10 * time.Second}
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		log.Debug("stopping mcp server", "addr", ln.Addr().String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("mcp server shutdown", "error", err)
		}
	}()

	if r.TLSCertFile != "" {
		err = httpSrv.ServeTLS(ln, r.TLSCertFile, r.TLSKeyFile)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
