// Package server exposes the wallpaper pipeline over HTTP for previewing.
//
// Routes:
//
//	GET /healthz         liveness and build version
//	GET /api/layout      masonry layout as JSON, no images involved
//	GET /wallpaper.png   rendered wallpaper (also /wallpaper.jpg)
//
// Query parameters width, height, gap, limit, columns, aspect, overfill and
// seed override the server's base options for one request. A seed turns on
// shuffling. Each request runs its own pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/shawnoster/bookcover-wallpaper/pkg/buildinfo"
	"github.com/shawnoster/bookcover-wallpaper/pkg/compose"
	apperrors "github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	"github.com/shawnoster/bookcover-wallpaper/pkg/pipeline"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 5 * time.Second

type ctxKey struct{}

// RequestID returns the ID assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Server serves previews for one base configuration.
type Server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
	router chi.Router
}

// New returns a Server that renders with runner. base supplies every option
// a request does not override.
func New(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, base: base, logger: logger}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(noCache)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/layout", s.handleLayout)
	r.Get("/wallpaper.png", s.handleWallpaper(compose.FormatPNG))
	r.Get("/wallpaper.jpg", s.handleWallpaper(compose.FormatJPEG))
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("preview server listening", "addr", "http://"+ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateForLayout(); err != nil {
		s.writeError(w, r, err)
		return
	}

	count := opts.Limit
	if count == 0 {
		count = pipeline.DefaultLimit
	}
	if v := r.URL.Query().Get("count"); v != "" {
		if count, err = strconv.Atoi(v); err != nil || count < 0 {
			s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid count %q", v))
			return
		}
	}
	refs := make([]string, count)
	for i := range refs {
		refs[i] = "cover-" + strconv.Itoa(i+1)
	}

	l, err := s.runner.Layout(r.Context(), refs, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleWallpaper(format compose.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.options(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Format = format

		result, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
		w.Header().Set("X-Covers", strconv.Itoa(len(result.Books)))
		if result.Seed != 0 {
			w.Header().Set("X-Seed", strconv.FormatUint(result.Seed, 10))
		}
		w.WriteHeader(http.StatusOK)
		w.Write(result.Data)
	}
}

// options applies query overrides to the base options.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.base
	opts.Logger = s.logger.With("request", RequestID(r.Context()))
	q := r.URL.Query()

	ints := []struct {
		name string
		dst  *int
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"limit", &opts.Limit},
		{"columns", &opts.Columns},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid %s %q", p.name, v)
			}
			*p.dst = n
		}
	}
	if v := q.Get("gap"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid gap %q", v)
		}
		opts.Gap = pipeline.GapOf(n)
	}
	if v := q.Get("aspect"); v != "" {
		opts.Aspect = v
	}
	if v := q.Get("overfill"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid overfill %q", v)
		}
		opts.Overfill = f
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid seed %q", v)
		}
		opts.Shuffle, opts.Seed = true, seed
	}
	return opts, nil
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorBody{
		Error:     apperrors.UserMessage(err),
		Code:      string(apperrors.GetCode(err)),
		RequestID: RequestID(r.Context()),
	})
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	if errors.Is(err, context.Canceled) {
		return 499
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidSource,
		apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidPath,
		apperrors.ErrCodeInvalidColor:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeNoCovers:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeNetwork:
		return http.StatusBadGateway
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID assigns a UUID to every request, reusing a well-formed ID sent
// by the client.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request", RequestID(r.Context()))
	})
}

// noCache keeps browsers from showing a stale preview.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		next.ServeHTTP(w, r)
	})
}
