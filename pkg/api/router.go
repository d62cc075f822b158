// pkg/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/aleka07/hello-api/pkg/config"
	"github.com/aleka07/hello-api/pkg/metrics"
	"github.com/aleka07/hello-api/pkg/middleware"
)

// RouterDeps are the optional collaborators of the application router.
type RouterDeps struct {
	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics       // nil disables request metrics
	Limiter *middleware.RateLimiter // nil disables rate limiting
}

// NewRouter builds the application router: the middleware stack, the JSON body
// parser and GET /. POST /user is added only when cfg.EnableUserRoute is set.
func NewRouter(cfg config.Config, deps RouterDeps) http.Handler {
	a := NewAPI(deps.Logger)

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	if deps.Limiter != nil {
		r.Use(deps.Limiter.Handler)
	}
	r.Use(middleware.JSONBody(cfg.BodyLimit, deps.Logger))
	r.Use(chimw.GetHead)

	// --- Routes ---
	r.Get("/", a.RootHandler)
	if cfg.EnableUserRoute {
		r.Post("/user", a.UserHandler)
	}

	return r
}

// NewOpsRouter serves /metrics and /healthz for the ops listener.
func NewOpsRouter(m *metrics.Metrics, logger logrus.FieldLogger) http.Handler {
	a := NewAPI(logger)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", a.HealthCheckHandler)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	return r
}
