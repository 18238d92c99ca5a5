// Package server exposes a layout over HTTP.
//
// One [Server] owns one layout and serializes every request against it.
// When a store is configured the layout is saved as a document after each
// change, so several processes behind a load balancer can share a Redis or
// MongoDB backend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	lterrors "github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/observability"
	"github.com/matzehuels/livetiles/pkg/state"
	"github.com/matzehuels/livetiles/pkg/store"
)

// Options configures a [Server].
type Options struct {
	Addr string
	// Store persists the layout under Document after every change. Nil
	// keeps the layout in memory only.
	Store    store.Store
	Keyer    store.Keyer
	Document string
	TTL      time.Duration

	ShutdownTimeout time.Duration
	Logger          *log.Logger
}

// Server serves one layout.
type Server struct {
	opts   Options
	logger *log.Logger

	mu     sync.Mutex
	layout *layout.Layout
	dirty  bool
}

// New wraps l. The server subscribes to l to learn about changes.
func New(l *layout.Layout, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Keyer == nil {
		opts.Keyer = store.DefaultKeyer{}
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{opts: opts, logger: opts.Logger, layout: l}
	l.Subscribe(func(*state.State) { s.dirty = true })
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/state", s.handleGetState)
	r.Put("/state", s.handlePutState)
	r.Get("/arrange", s.handleArrange)
	r.Get("/render", s.handleRender)
	r.Post("/snap", s.handleSnap)

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", s.handleListGroups)
		r.Post("/", s.handleAddGroup)
		r.Patch("/{id}", s.handlePatchGroup)
		r.Delete("/{id}", s.handleDeleteGroup)
	})
	r.Route("/tiles", func(r chi.Router) {
		r.Get("/", s.handleListTiles)
		r.Post("/", s.handleAddTile)
		r.Patch("/{id}", s.handlePatchTile)
		r.Delete("/{id}", s.handleDeleteTile)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// withLayout runs fn under the layout lock and persists the layout if fn
// changed it. A failed save undoes the change.
func (s *Server) withLayout(ctx context.Context, fn func(l *layout.Layout) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.layout.State()
	s.dirty = false
	if err := fn(s.layout); err != nil {
		return err
	}
	if !s.dirty || s.opts.Store == nil {
		return nil
	}
	doc := store.NewDocument(s.layout)
	if err := store.Save(ctx, s.opts.Store, s.opts.Keyer, s.opts.Document, doc, s.opts.TTL); err != nil {
		s.logger.Error("save layout", "document", s.opts.Document, "err", err)
		if rerr := s.layout.Restore(before); rerr != nil {
			s.logger.Error("roll back layout", "err", rerr)
		}
		return err
	}
	return nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	OK    bool      `json:"ok"`
	Error errorInfo `json:"error"`
}

type errorInfo struct {
	Code    lterrors.Code `json:"code"`
	Message string        `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := lterrors.GetCode(err)
	if code == "" {
		code = lterrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorInfo{Code: code, Message: lterrors.UserMessage(err)}})
}

// writeUnresolvable reports a geometric failure: the request was valid but
// the tiles could not be arranged.
func writeUnresolvable(w http.ResponseWriter, id string) {
	writeJSON(w, http.StatusConflict, errorBody{Error: errorInfo{
		Code:    lterrors.ErrCodeUnresolvable,
		Message: "no placement found for tile " + id,
	}})
}

func statusFor(code lterrors.Code) int {
	switch code {
	case lterrors.ErrCodeDuplicateID:
		return http.StatusConflict
	case lterrors.ErrCodeUnknownID, lterrors.ErrCodeNotFound, lterrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case lterrors.ErrCodeInvalidConfig, lterrors.ErrCodeInvalidInput, lterrors.ErrCodeInvalidFormat,
		lterrors.ErrCodeInvalidPath, lterrors.ErrCodeInvalidState:
		return http.StatusBadRequest
	case lterrors.ErrCodeUnresolvable:
		return http.StatusConflict
	case lterrors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case lterrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
