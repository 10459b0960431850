package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/code-golf/internal/config"
	"github.com/terra-clan/code-golf/internal/session"
	"github.com/terra-clan/code-golf/internal/site"
)

// Check is a named readiness probe of a dependency
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Server represents the HTTP server of the golf front-end
type Server struct {
	config   config.ServerConfig
	router   *chi.Mux
	sessions *session.Manager
	pages    map[string]site.Page
	checks   []Check
	// readLimit bounds one inbound websocket message
	readLimit int64
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	sessions *session.Manager,
	pages []site.Page,
	readLimit int64,
	checks ...Check,
) *Server {
	s := &Server{
		config:    cfg,
		sessions:  sessions,
		pages:     make(map[string]site.Page, len(pages)),
		checks:    checks,
		readLimit: readLimit,
	}
	for _, p := range pages {
		s.pages[p.Path] = p
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Sessions live as long as the socket, so no request timeout here
	r.Get("/ws", s.handleSessionWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)

		r.Get("/", s.handlePage)
		for path := range s.pages {
			r.Get(path, s.handlePage)
		}
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
