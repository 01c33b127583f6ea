// Package server provides the MCP tool registry, HTTP handlers and routing for the booking MCP server.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"booking-mcp/internal/booking"
)

const (
	serverName    = "restaurant-booking"
	serverVersion = "1.0.0"
)

// Config contains server configuration values such as port and backend location.
type Config struct {
	Port              string
	BookingAPIBaseURL string
	// BackendTimeout bounds each backend request. Zero means no timeout.
	BackendTimeout time.Duration
	// Logger defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// Server contains the configured router, MCP transports and booking client.
type Server struct {
	cfg        Config
	router     *chi.Mux
	log        *logrus.Entry
	metrics    *metrics
	api        *booking.Client
	registry   *Registry
	mcp        *mcpserver.MCPServer
	sse        *mcpserver.SSEServer
	streamable *mcpserver.StreamableHTTPServer
}

// New constructs a Server with tools registered, middleware and routes configured.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		cfg:     cfg,
		router:  chi.NewRouter(),
		log:     logger.WithField("component", "server"),
		metrics: newMetrics(),
	}
	httpClient := booking.NewHTTPClient(cfg.BackendTimeout, s.metrics.instrument(http.DefaultTransport))
	s.api = booking.New(cfg.BookingAPIBaseURL, httpClient)
	s.registry = NewRegistry(logger.WithField("component", "tools"), s.metrics)
	s.registerToolHandlers()

	s.mcp = mcpserver.NewMCPServer(serverName, serverVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	s.registry.Mount(s.mcp)
	s.sse = mcpserver.NewSSEServer(s.mcp,
		mcpserver.WithSSEEndpoint("/sse"),
		mcpserver.WithMessageEndpoint("/messages"),
	)
	s.streamable = mcpserver.NewStreamableHTTPServer(s.mcp,
		mcpserver.WithEndpointPath("/mcp"),
		mcpserver.WithStateLess(true),
	)

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(logger.WithField("component", "http")))
	s.router.Use(middleware.Recoverer)

	// Tool calls and streams stay outside the request timeout; a tool call lasts as long as the backend takes.
	s.router.Get("/sse", s.sse.SSEHandler().ServeHTTP)
	s.router.Post("/messages", s.sse.MessageHandler().ServeHTTP)
	s.router.Handle("/mcp", s.streamable)
	s.router.Post("/tools/call", s.handleCall)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/health", s.handleHealth)
		r.Get("/tools", s.handleListTools)
		r.Handle("/metrics", s.metrics.handler())
	})
	s.router.NotFound(s.handleNotFound)

	return s
}

func (s *Server) registerToolHandlers() {
	tools := &bookingTools{api: s.api}
	tools.register(s.registry)
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

// Shutdown closes the MCP transports and their sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(s.sse.Shutdown(ctx), s.streamable.Shutdown(ctx))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.Tools()})
}

// handleCall dispatches a tool call outside of an MCP session. Results use the MCP result shape.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	text, err := s.registry.Call(r.Context(), req.Name, req.Args)
	switch {
	case errors.Is(err, ErrUnknownTool):
		http.Error(w, "unknown tool", http.StatusNotFound)
	case errors.Is(err, ErrInvalidArguments):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, mcp.NewToolResultText(text))
	}
}
