// Package server is the reference contact API: the HTTP surface the remote
// client talks to, backed by any types.ContactCollection (in practice the
// SQLite contacts table). Responses use {"data": ...} on success and
// {"message": ...} on failure.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Messages returned in error bodies.
const (
	MsgNotFound        = "Contact not found"
	MsgUnauthorized    = "Unauthorized"
	MsgTooManyRequests = "Too many requests"
	MsgInvalidBody     = "Invalid request body"
	MsgInvalidQuery    = "Invalid query"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server. The zero value serves without auth or rate
// limiting and registers metrics on a private registry.
type Options struct {
	Token     string
	RateLimit float64
	Burst     int
	Logger    *slog.Logger
	Registry  *prometheus.Registry
}

// Server routes contact API requests to a collection.
type Server struct {
	contacts types.ContactCollection
	token    string
	logger   *slog.Logger
	limiter  *clientLimiter
	metrics  *metrics
	decoder  *schema.Decoder
	handler  http.Handler
	now      func() time.Time
}

// New builds the API handler.
func New(contacts types.ContactCollection, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	s := &Server{
		contacts: contacts,
		token:    opts.Token,
		logger:   logger,
		limiter:  newClientLimiter(opts.RateLimit, opts.Burst, 0),
		metrics:  newMetrics(reg),
		decoder:  decoder,
		now:      time.Now,
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /contact", s.handleList)
	api.HandleFunc("POST /contact", s.handleCreate)
	api.HandleFunc("GET /contact/{id}", s.handleGet)
	api.HandleFunc("PATCH /contact/{id}", s.handleUpdate)
	api.HandleFunc("DELETE /contact/{id}", s.handleDelete)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", s.limit(s.authorize(api)))

	s.handler = s.observe(mux)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Serve answers requests on ln until ctx is cancelled, then shuts down,
// giving in-flight requests up to grace to finish.
func Serve(ctx context.Context, ln net.Listener, h http.Handler, grace time.Duration, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("contact server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("contact server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var filter types.FilterCriteria
	if err := s.decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.writeMessage(w, http.StatusBadRequest, MsgInvalidQuery)
		return
	}
	order, err := types.ParseSortOrder(string(filter.SortOrder))
	if err != nil {
		s.writeMessage(w, http.StatusBadRequest, "Invalid sort order")
		return
	}
	filter.SortOrder = order

	contacts, err := s.contacts.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err, "Failed to fetch contacts")
		return
	}
	s.writeData(w, http.StatusOK, contacts)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	contact, err := s.contacts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, "Failed to fetch contact")
		return
	}
	s.writeData(w, http.StatusOK, contact)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var fields types.ContactFields
	if !s.readBody(w, r, &fields) {
		return
	}
	if missing := fields.Missing(); len(missing) > 0 {
		s.writeMessage(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	contact, err := s.contacts.Create(r.Context(), fields)
	if err != nil {
		s.writeError(w, r, err, "Failed to create contact")
		return
	}
	s.writeData(w, http.StatusCreated, contact)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch types.ContactPatch
	if !s.readBody(w, r, &patch) {
		return
	}

	changed, err := s.contacts.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err, "Failed to update contact")
		return
	}
	s.writeData(w, http.StatusOK, changed)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.contacts.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "Failed to delete contact")
		return
	}
	s.writeData(w, http.StatusOK, map[string]string{"id": id})
}

// readBody decodes a JSON body into dst, answering 400 itself on failure.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		s.writeMessage(w, http.StatusBadRequest, MsgInvalidBody)
		return false
	}
	return true
}

// writeError maps a collection error onto a status code. Unexpected errors
// are logged and answered with fallback.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		s.writeMessage(w, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidContact),
		errors.Is(err, types.ErrInvalidSortOrder):
		s.writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("contact request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, map[string]any{"data": data})
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"message": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("writing response", "error", err)
	}
}

// authorize rejects requests whose bearer token does not match. With no
// token configured every request passes.
func (s *Server) authorize(next http.Handler) http.Handler {
	if s.token == "" {
		return next
	}
	want := []byte("Bearer " + s.token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			s.writeMessage(w, http.StatusUnauthorized, MsgUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limit applies the per-client token bucket, keyed by remote host.
func (s *Server) limit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientKey(r), s.now()) {
			s.metrics.limited.Inc()
			w.Header().Set("Retry-After", "1")
			s.writeMessage(w, http.StatusTooManyRequests, MsgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// observe tags each request with an ID, then logs and measures it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := s.now().Sub(start)
		s.metrics.observe(r.Method, route, rec.status, elapsed)
		s.logger.Info("request",
			"id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
