// Package server exposes the admission pipeline over HTTP: the transaction
// ingress, the persistent websocket endpoint raters connect to, and the
// health/metrics surface.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/txwarden/txwarden/internal/alert"
	"github.com/txwarden/txwarden/internal/arbiter"
	"github.com/txwarden/txwarden/internal/audit"
	"github.com/txwarden/txwarden/internal/config"
	"github.com/txwarden/txwarden/internal/dispatch"
	"github.com/txwarden/txwarden/internal/hub"
	"github.com/txwarden/txwarden/internal/model"
	"github.com/txwarden/txwarden/internal/pipeline"
)

const wsWriteTimeout = 5 * time.Second

// Config holds server configuration.
type Config struct {
	Port       int
	ConfigPath string
}

// Server runs the admission pipeline behind an HTTP listener. The rater hub
// and the audit log live for the whole process; the pipeline is rebuilt on
// config hot-reload and swapped under the mutex.
type Server struct {
	cfg      Config
	hub      *hub.Hub
	auditLog *audit.Log

	mu   sync.RWMutex
	pipe *pipeline.Pipeline

	upgrader websocket.Upgrader
	srv      *http.Server
}

// New creates a server with loaded configuration.
func New(cfg Config) (*Server, error) {
	runtimeCfg, cfgHash, err := config.LoadWithHash(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = runtimeCfg.Port
	}

	var auditLog *audit.Log
	if runtimeCfg.AuditLog != "" {
		auditLog, err = audit.Open(runtimeCfg.AuditLog)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	s := &Server{
		cfg:      cfg,
		hub:      hub.New(),
		auditLog: auditLog,
		upgrader: websocket.Upgrader{
			// Raters are independent processes, not browsers; no origin check.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	pipe, err := s.buildPipeline(runtimeCfg, cfgHash)
	if err != nil {
		return nil, err
	}
	s.pipe = pipe

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.Handler(),
	}
	return s, nil
}

func (s *Server) buildPipeline(cfg *config.Config, cfgHash string) (*pipeline.Pipeline, error) {
	var broadcaster *dispatch.Broadcaster
	if cfg.Broadcaster.URL != "" {
		broadcaster = dispatch.New(cfg.BroadcasterSettings())
	}
	return pipeline.New(pipeline.Options{
		Hub:          s.hub,
		Engine:       arbiter.NewEngine(arbiter.NewHTTPJudge(cfg.JudgeSettings())),
		Broadcaster:  broadcaster,
		Dispatcher:   alert.NewDispatcher(cfg.Alerts),
		AuditLog:     s.auditLog,
		ConfigHash:   cfgHash,
		WindowBudget: time.Duration(cfg.WindowBudget),
		QuietPeriod:  time.Duration(cfg.QuietPeriod),
	})
}

// Reload re-reads the config file and swaps the pipeline. Called by the
// hot-reloader on file change. The hub and audit log are kept; only judge,
// broadcaster, alerting, and window settings change.
func (s *Server) Reload() error {
	cfg, cfgHash, err := config.LoadWithHash(s.cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	pipe, err := s.buildPipeline(cfg, cfgHash)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.pipe = pipe
	s.mu.Unlock()
	return nil
}

// Handler returns the HTTP routing surface. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /agent/transaction", s.handleTransaction)
	mux.HandleFunc("GET /ws/rater", s.handleRater)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Serve starts the HTTP server on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	return s.srv.ListenAndServe()
}

// ServeOn starts the server on the given listener. For testing.
func (s *Server) ServeOn(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Close releases the audit log.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// RaterCount reports the number of connected raters.
func (s *Server) RaterCount() int {
	return s.hub.ConnCount()
}

// handleTransaction is the admission ingress. The request runs to a terminal
// decision before the response is written; the caller never sees "pending".
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	var req model.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return
	}

	s.mu.RLock()
	pipe := s.pipe
	s.mu.RUnlock()

	resp, err := pipe.Admit(r.Context(), req)
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.Canceled):
		// Caller went away; nothing left to write.
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleRater upgrades the connection and pumps warnings into the hub until
// the transport fails. A single undecodable message is logged and discarded;
// it does not drop the connection.
func (s *Server) handleRater(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: rater upgrade failed: %v", err)
		return
	}

	conn := s.hub.Register(&wsSender{ws: ws})
	log.Printf("server: rater %s connected", conn.ID)
	defer func() {
		s.hub.Unregister(conn)
		_ = ws.Close()
		log.Printf("server: rater %s disconnected", conn.ID)
	}()

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg hub.WarningMessage
		if err := json.Unmarshal(frame, &msg); err != nil {
			log.Printf("server: rater %s: decode error: %v", conn.ID, err)
			continue
		}
		if msg.Type != hub.TypeWarning || msg.TransactionHash == "" {
			log.Printf("server: rater %s: discarding unexpected message type %q", conn.ID, msg.Type)
			continue
		}
		s.hub.SubmitWarning(msg.TransactionHash, msg.Message)
	}
}

// wsSender adapts a websocket connection to the hub's Sender. Writes are
// serialized; broadcast frames from concurrent admissions would race
// otherwise.
type wsSender struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (s *wsSender) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.ws.WriteMessage(websocket.TextMessage, frame)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(model.SubmitResponse{
		Status:  "error",
		Message: msg,
	})
}
