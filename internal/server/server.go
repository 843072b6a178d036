// Package server is the HTTP face of the monitor: a JSON API plus the
// embedded status page. It holds no domain logic; every request is decoded,
// handed to the monitor, and the result (or the mapped error) is serialized
// back out.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/noteports/noteports/internal/catalog"
	"github.com/noteports/noteports/internal/monitor"
)

//go:embed index.html
var webFS embed.FS

// Server serves the JSON API and the status page.
type Server struct {
	mon    *monitor.Monitor
	logger *slog.Logger
	http   *http.Server
}

func New(mon *monitor.Monitor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{mon: mon, logger: logger}
}

// Handler builds the route table. Exposed so tests can drive the API through
// httptest without opening a real listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/ports", s.handlePorts)
	mux.HandleFunc("GET /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handlePostConfig)
	mux.HandleFunc("DELETE /api/config/{name}", s.handleDeleteConfig)
	return s.logRequests(mux)
}

// ListenAndServe blocks until the server stops. Shutdown stops it.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.Handler()}
	s.logger.Info("web server starting", "address", fmt.Sprintf("http://%s/", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, bounded by a 5s timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"remote_addr", r.RemoteAddr, "duration", time.Since(start))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := webFS.ReadFile("index.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handlePorts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := monitor.Filter{Search: q.Get("search")}
	// Unparseable bounds fall back to the full range rather than erroring,
	// the behavior the page's range form has always relied on.
	if n, err := strconv.Atoi(q.Get("start_port")); err == nil {
		f.StartPort = n
	}
	if n, err := strconv.Atoi(q.Get("end_port")); err == nil {
		f.EndPort = n
	}

	report, err := s.mon.Status(r.Context(), f)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, report)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := s.mon.Status(r.Context(), monitor.Filter{})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, report)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.mon.Catalog())
}

// configUpdate is the single-service POST body. Batch updates arrive as a
// flat {"name": port} object instead and are detected by the absence of the
// service_name/port pair.
type configUpdate struct {
	ServiceName *string     `json:"service_name"`
	Port        json.Number `json:"port"`
	Note        string      `json:"note"`
}

func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || len(raw) == 0 {
		s.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, single := raw["service_name"]; single {
		var upd configUpdate
		if err := unmarshalMap(raw, &upd); err != nil || upd.ServiceName == nil {
			s.fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.mon.AddService(*upd.ServiceName, upd.Port.String(), upd.Note); err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, http.StatusOK, map[string]string{"message": "config saved"})
		return
	}

	batch := make(map[string]int, len(raw))
	for name, val := range raw {
		// A batch value takes the same shapes the persisted file does: a
		// port number, a numeric string, or a {"port": n} object. Anything
		// else is reported as skipped, never fatal to the batch.
		port, _, ok := catalog.DecodeValue(val)
		if !ok {
			port = 0
		}
		batch[name] = port
	}
	skipped, err := s.mon.ReplaceCatalog(batch)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"message": "config saved", "skipped": skipped})
}

func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.mon.RemoveService(name); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"message": "service removed"})
}

// envelope is the response shape the page expects: success flag, then either
// data or an error string.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// respondError maps monitor errors onto HTTP statuses: bad input 400 with the
// failing field named, unknown service 404, enumeration failure 500.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var verr *catalog.ValidationError
	var eerr *monitor.EnumerationError
	switch {
	case errors.As(err, &verr):
		s.fail(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, monitor.ErrNotFound):
		s.fail(w, http.StatusNotFound, "service not found")
	case errors.As(err, &eerr):
		s.logger.Error("status unavailable", "error", err)
		s.fail(w, http.StatusInternalServerError, "status temporarily unavailable")
	default:
		s.logger.Error("request failed", "error", err)
		s.fail(w, http.StatusInternalServerError, "internal error")
	}
}

func unmarshalMap(raw map[string]json.RawMessage, v any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
