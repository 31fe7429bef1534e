package app

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/campusgate/campusgate/internal/auth"
	"github.com/campusgate/campusgate/internal/observability"
	"github.com/campusgate/campusgate/internal/students"
	"github.com/campusgate/campusgate/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Guard           auth.Middleware
	AuthHandler     *auth.Handler
	StudentsHandler *students.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router. The guard middleware runs ahead
// of every route; which routes are public is decided by its rule table,
// not by the routing layout.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Guard.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Public landing page and its assets. Which paths skip
	// authentication is still the guard's call.
	assets, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic(fmt.Sprintf("static assets: %v", err))
	}
	serveIndex := func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, assets, "index.html")
	}
	r.Get("/", serveIndex)
	r.Get("/index", serveIndex)
	fileServer := http.FileServerFS(assets)
	r.Handle("/css/*", fileServer)
	r.Handle("/js/*", fileServer)

	// Login gets a tighter per-IP limit than the global one.
	r.Group(func(r chi.Router) {
		limit := 10
		if params.Config != nil && params.Config.LoginRateLimit > 0 {
			limit = params.Config.LoginRateLimit
		}
		r.Use(httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})

	r.Route("/api/v1/students", params.StudentsHandler.MountAPIRoutes)
	r.Route("/management/api/v1/students", params.StudentsHandler.MountManagementRoutes)

	return r
}
