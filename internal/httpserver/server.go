// internal/httpserver/server.go
//
// HTTP server wiring for the match-grid backend.
// Responsibilities:
//   - Router + middleware (CORS, panic recovery, request IDs, access logs).
//   - Public endpoints: "/" and "/static/*" (embedded browser client), "/api", "/health".
//   - Game endpoints: POST /game/new, then session-bound /game/{id}/*.
//   - Idle session eviction (RunJanitor) and graceful shutdown (Serve).
//
// Notes:
//   - Every /game/{id} route requires the session token issued by /game/new.
//   - The events stream is excluded from the handler timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/matchgrid/assets"
	"github.com/robalobadob/matchgrid/internal/config"
	"github.com/robalobadob/matchgrid/internal/store"
)

const handlerTimeout = 10 * time.Second

// Server bundles router, session store and configuration.
type Server struct {
	r     *chi.Mux
	store store.Store
	cfg   config.Config
	clock clock.Clock
	log   zerolog.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithClock sets the clock shared by game sessions, tokens and the janitor.
func WithClock(c clock.Clock) Option { return func(s *Server) { s.clock = c } }

// WithLogger replaces the global zerolog logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Server) { s.log = l } }

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg config.Config, opts ...Option) *Server {
	s := &Server{r: chi.NewRouter(), store: st, cfg: cfg, clock: clock.New(), log: log.Logger}
	for _, o := range opts {
		o(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(hlog.NewHandler(s.log))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(s.cors) // credentials-friendly CORS

	// --- browser client + diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(assets.Index())
	})
	s.r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(assets.Web()))))
	s.r.With(jsonContentType).Get("/api", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"matchgrid","endpoints":["/health","POST /game/new","/game/{id}","/game/{id}/events"]}`))
	})
	s.r.With(jsonContentType).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountGame(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunJanitor evicts sessions idle longer than the configured TTL, checking
// every interval until ctx is cancelled.
func (s *Server) RunJanitor(ctx context.Context, every time.Duration) error {
	t := s.clock.Ticker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.store.Sweep(ctx, s.clock.Now().Add(-s.cfg.SessionTTL)); n > 0 {
				s.log.Info().Int("evicted", n).Int("remaining", s.store.Len()).Msg("idle sessions evicted")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one debug line per request.
func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Debug().
		Str("reqId", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
