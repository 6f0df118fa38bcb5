package viewer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/eren/chronotrace/internal/observability"
	"github.com/eren/chronotrace/pkg/trace"
)

// Server serves the timeline page, the current trace document and live
// update notifications for a single trace file.
type Server struct {
	host           string
	port           int
	tracePath      string
	server         *http.Server
	upgrader       websocket.Upgrader
	clients        *ClientRegistry
	broadcaster    *EventBroadcaster
	watcher        *TraceWatcher
	logger         zerolog.Logger
	isShuttingDown bool
	shutdownMu     sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Host      string
	Port      int
	TracePath string
	Debounce  time.Duration
	Logger    zerolog.Logger
}

// NewServer creates a new viewer server
func NewServer(cfg Config) (*Server, error) {
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.TracePath == "" {
		return nil, fmt.Errorf("trace path is required")
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}

	clients := NewClientRegistry()
	broadcaster := NewEventBroadcaster(clients, cfg.Logger)

	s := &Server{
		host:        cfg.Host,
		port:        cfg.Port,
		tracePath:   cfg.TracePath,
		clients:     clients,
		broadcaster: broadcaster,
		logger:      cfg.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	watcher, err := NewTraceWatcher(TraceWatcherConfig{
		TracePath:          cfg.TracePath,
		StabilityThreshold: cfg.Debounce,
		OnChange: func(path string) error {
			s.broadcaster.Broadcast(EventTraceUpdated, map[string]interface{}{
				"path": path,
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	s.watcher = watcher

	return s, nil
}

// URL returns the address the viewer page is served on.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s:%d", s.host, s.port)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/trace", s.handleTrace)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", observability.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// Start starts the viewer server and the trace watcher
func (s *Server) Start() error {
	if err := s.watcher.Start(); err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.host, s.port),
		Handler: s.routes(),
	}

	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting viewer server")

	// Start server in goroutine so it doesn't block
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Viewer server error")
		}
	}()

	return nil
}

// Stop gracefully stops the viewer server
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down viewer server")

	if err := s.watcher.Stop(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to stop trace watcher")
	}

	// Broadcast shutdown event
	s.broadcaster.Broadcast(EventServerShutdown, map[string]interface{}{
		"message": "Server is shutting down",
	})

	// Close all client connections
	for _, client := range s.clients.GetAll() {
		client.Conn.Close()
		s.clients.Remove(client.ID)
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	s.logger.Info().Msg("Viewer server stopped")
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(viewerPage))
}

// handleTrace serves the current trace document. A still-open session
// is terminated for display only; the file on disk is untouched.
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.tracePath)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.tracePath).Msg("Trace file not readable")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"trace file not found"}`))
		return
	}

	if !trace.IsTerminated(data) {
		repaired, _, err := trace.RepairBytes(data)
		if err != nil {
			s.logger.Error().Err(err).Str("path", s.tracePath).Msg("Trace file not servable")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"not a trace document"}`))
			return
		}
		data = repaired
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	if s.isShuttingDown {
		s.shutdownMu.RUnlock()
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}
	s.shutdownMu.RUnlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	clientID, _ := gonanoid.New()
	client := &Client{
		ID:           clientID,
		Conn:         conn,
		ConnectedAt:  time.Now(),
		LastActivity: time.Now(),
		IPAddress:    r.RemoteAddr,
	}

	s.clients.Add(client)

	s.logger.Info().
		Str("clientId", clientID).
		Str("ip", r.RemoteAddr).
		Msg("Client connected")

	go s.handleClient(client)
}

// handleClient drains messages from a client until it disconnects
func (s *Server) handleClient(client *Client) {
	defer func() {
		client.Conn.Close()
		s.clients.Remove(client.ID)
		s.logger.Info().Str("clientId", client.ID).Msg("Client disconnected")
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error().Err(err).Str("clientId", client.ID).Msg("WebSocket error")
			}
			break
		}
		s.clients.UpdateActivity(client.ID)
	}
}

// Broadcast broadcasts an event to all connected clients
func (s *Server) Broadcast(event string, data interface{}) {
	s.broadcaster.Broadcast(event, data)
}

// GetConnectedClients returns information about all connected clients
func (s *Server) GetConnectedClients() []ClientInfo {
	return s.clients.GetConnectedClients()
}
