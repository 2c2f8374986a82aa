// Package server exposes a running ecosystem for observation: a JSON state
// snapshot, a disaster trigger, and a websocket stream with one frame per
// lifecycle event. The simulation core never depends on this package.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mpurbo/ecosim/internal/core/ecology"
	"github.com/mpurbo/ecosim/internal/core/events/bus"
	"github.com/mpurbo/ecosim/internal/core/geometry"
	"github.com/mpurbo/ecosim/internal/core/observability/log"
)

// Config holds observation server configuration
type Config struct {
	// ListenAddr is the host:port to serve on.
	ListenAddr string
	// SendBuffer is the per-client frame queue length.
	SendBuffer int
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns default observation server configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8080",
		SendBuffer:      64,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Frame is one websocket message: the lifecycle event that triggered it plus
// a full agent snapshot, so observers never need to reconstruct state.
type Frame struct {
	Event  string               `json:"event"`
	Data   any                  `json:"data,omitempty"`
	Agents []ecology.AgentState `json:"agents"`
}

// StateResponse is the /state payload.
type StateResponse struct {
	Agents []ecology.AgentState `json:"agents"`
	Passes int                  `json:"passes"`
}

// DisasterResponse is the /disaster payload.
type DisasterResponse struct {
	Converged bool                 `json:"converged"`
	Passes    int                  `json:"passes"`
	Agents    []ecology.AgentState `json:"agents"`
	Error     string               `json:"error,omitempty"`
}

// Server streams ecosystem state to websocket observers and accepts disaster
// triggers over HTTP.
type Server struct {
	eco      *ecology.Ecosystem
	eventBus bus.EventBus

	cfg    Config
	logger log.Log

	hub        *wsHub
	httpServer *http.Server
	subs       []bus.Subscription
	addr       string

	running int32 // atomic bool
	closed  int32 // atomic bool
}

// New creates an observation server over eco. eventBus must be the same bus
// the ecosystem publishes on; logger may be nil.
func New(eco *ecology.Ecosystem, eventBus bus.EventBus, cfg Config, logger log.Log) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	return &Server{
		eco:      eco,
		eventBus: eventBus,
		cfg:      cfg,
		logger:   logger.With(log.String("component", "observation_server")),
		hub:      newHub(),
	}
}

// Start subscribes to the ecosystem's lifecycle events and begins serving.
// It returns once the listener is bound; serving continues in the background
// until Stop.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	for _, eventType := range []string{
		ecology.EventDisaster,
		ecology.EventAgentSafe,
		ecology.EventConverged,
		ecology.EventNoConvergence,
	} {
		sub, err := s.eventBus.Subscribe(eventType, s.broadcastFrame)
		if err != nil {
			atomic.StoreInt32(&s.running, 0)
			return err
		}
		s.subs = append(s.subs, sub)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/disaster", s.handleDisaster)
	mux.HandleFunc("/ws", s.handleWebSocket)

	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		s.unsubscribeAll()
		atomic.StoreInt32(&s.running, 0)
		return err
	}

	s.addr = listener.Addr().String()
	s.httpServer = &http.Server{Handler: mux, BaseContext: func(net.Listener) context.Context { return ctx }}
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", log.Error(err))
		}
	}()

	s.logger.Info("observation server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Stop shuts the server down and disconnects all observers.
func (s *Server) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return ErrServerClosed
	}
	atomic.StoreInt32(&s.running, 0)

	s.unsubscribeAll()
	s.hub.closeAll()

	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) unsubscribeAll() {
	for _, sub := range s.subs {
		_ = s.eventBus.Unsubscribe(sub)
	}
	s.subs = nil
}

// broadcastFrame is the bus handler: every lifecycle event becomes one frame.
func (s *Server) broadcastFrame(e bus.Event) error {
	frame := Frame{
		Event:  e.Type(),
		Data:   e.Data(),
		Agents: s.eco.Agents(),
	}
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	s.hub.broadcast(b)
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{
		Agents: s.eco.Agents(),
		Passes: s.eco.Passes(),
	})
}

func (s *Server) handleDisaster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	hazard, err := parseHazard(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, DisasterResponse{Error: err.Error()})
		return
	}

	err = s.eco.OnDisaster(r.Context(), hazard)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, DisasterResponse{
			Converged: true,
			Passes:    s.eco.Passes(),
			Agents:    s.eco.Agents(),
		})
	case errors.Is(err, ecology.ErrDisasterInProgress):
		writeJSON(w, http.StatusConflict, DisasterResponse{Error: err.Error()})
	case errors.Is(err, ecology.ErrNoConvergence):
		writeJSON(w, http.StatusOK, DisasterResponse{
			Converged: false,
			Passes:    s.eco.Passes(),
			Agents:    s.eco.Agents(),
			Error:     err.Error(),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, DisasterResponse{Error: err.Error()})
	}
}

func parseHazard(r *http.Request) (geometry.Vector2, error) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		return geometry.Vector2{}, ErrInvalidHazard
	}
	return geometry.Vec(x, y), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
