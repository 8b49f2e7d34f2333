package http

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"outreach/internal/auth"
	"outreach/internal/log"
	"outreach/internal/middleware/ratelimit"
	"outreach/internal/middleware/security"
	"outreach/internal/middleware/trace"
	"outreach/internal/services"
	"outreach/internal/store"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Live      *store.Live
	Records   *services.Records
	Importer  *services.Importer
	Dashboard *services.Dashboard
	Auth      *auth.Service
	Sessions  *auth.Sessions
	// Ready reports whether the backend can serve traffic. Nil means
	// always ready.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
}

// Options tune the HTTP surface.
type Options struct {
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	StaticDir          string
}

type Server struct {
	http.Server
	deps    Deps
	opts    Options
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	logger  *log.Logger
	now     func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	s := &Server{
		deps:    deps,
		opts:    opts,
		limiter: ratelimit.NewLimiter(ratelimit.Config{Limit: opts.RateLimitPerMinute, Window: time.Minute}),
		tracer:  trace.NewMiddleware(deps.Logger),
		logger:  deps.Logger.WithComponent(log.ComponentHTTP),
		now:     time.Now,
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.tracer.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(security.NoStore)
		r.Use(s.limiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
			NewResponse().Status(http.StatusTooManyRequests).
				JSON(errorBody{Error: "rate limit exceeded"}).
				Warning("요청 제한", "잠시 후 다시 시도해주세요").
				Write(w)
		}))

		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			// Websocket connections outlive the request timeout.
			r.Get("/live/{collection}", s.handleLive)

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(s.opts.RequestTimeout))

				r.Get("/session", s.handleSession)
				r.Post("/password", s.handleChangePassword)

				r.Route("/organizations", func(r chi.Router) {
					r.Get("/", s.handleListOrganizations)
					r.Post("/", createHandler(organizationLabels, s.deps.Live.AddOrganization))
					r.Post("/import", s.handleImportOrganizations)
					r.Get("/template", s.handleOrganizationTemplate)
					r.Patch("/{id}", updateHandler(organizationLabels, s.deps.Live.UpdateOrganization))
					r.Delete("/{id}", deleteHandler(organizationLabels, s.deps.Live.DeleteOrganization))
				})

				r.Route("/performances", func(r chi.Router) {
					r.Get("/", s.handleListPerformances)
					r.Post("/", createHandler(performanceLabels, s.deps.Records.CreatePerformance))
					r.Post("/import", s.handleImportPerformances)
					r.Get("/export.csv", s.handleExportPerformancesCSV)
					r.Get("/export.xlsx", s.handleExportPerformancesXLSX)
					r.Patch("/{id}", updateHandler(performanceLabels, s.deps.Live.UpdatePerformance))
					r.Delete("/{id}", deleteHandler(performanceLabels, s.deps.Live.DeletePerformance))
				})

				r.Route("/budget-items", func(r chi.Router) {
					r.Get("/", s.handleListBudgetItems)
					r.Post("/", s.handleCreateBudgetItem)
					r.Put("/order", s.handleReorderBudgetItems)
					r.Patch("/{id}", updateHandler(budgetItemLabels, s.deps.Live.UpdateBudgetItem))
					r.Delete("/{id}", deleteHandler(budgetItemLabels, s.deps.Live.DeleteBudgetItem))
				})

				r.Route("/expenditures", func(r chi.Router) {
					r.Get("/", s.handleListExpenditures)
					r.Post("/", createHandler(expenditureLabels, s.deps.Records.AddExpenditure))
					r.Patch("/{id}", updateHandler(expenditureLabels, s.deps.Live.UpdateExpenditure))
					r.Delete("/{id}", deleteHandler(expenditureLabels, s.deps.Live.DeleteExpenditure))
				})

				r.Get("/options", s.handleOptions)
				r.Get("/dashboard", s.handleDashboard)
				r.Get("/budget/summary", s.handleBudgetSummary)
			})
		})
	})

	if s.opts.StaticDir != "" {
		r.With(security.StaticAssetMiddleware(300)).Get("/*", spaHandler(s.opts.StaticDir))
	}
	return r
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// spaHandler serves files from dir and falls back to index.html so that
// client-side routes load the app.
func spaHandler(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				http.ServeFile(w, r, filepath.Join(dir, "index.html"))
				return
			}
		}
		files.ServeHTTP(w, r)
	}
}
