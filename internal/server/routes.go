package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tyrowin/webhooker/internal/hub"
	"github.com/Tyrowin/webhooker/internal/security"
	"github.com/Tyrowin/webhooker/internal/store"
)

// Dependencies are the collaborators SetupRoutes wires into the router.
type Dependencies struct {
	Config  *Config
	Logger  *slog.Logger
	Store   store.Store
	Gate    *security.Gate
	Hub     *hub.Hub
	Metrics *Metrics
	Static  fs.FS
}

// SetupRoutes builds the application router.
func SetupRoutes(d Dependencies) http.Handler {
	h := NewHandler(d.Store, d.Gate, d.Hub, d.Static, d.Logger)
	secured := secureHeaders(d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(d.Logger), middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Get("/healthz", h.HealthHandler)
	r.Handle("/ws", d.Hub)

	r.Group(func(r chi.Router) {
		r.Use(secured)
		r.Get("/", h.IndexHandler)
		r.Get("/favicon.ico", h.FaviconHandler)
		r.Handle("/static/*", h.StaticHandler())
	})

	r.Group(func(r chi.Router) {
		r.Use(secured, rateLimit(d.Config.HTTPRateLimit))
		r.Post("/token", h.TokenHandler)

		r.Group(func(r chi.Router) {
			r.Use(requireBearer(d.Gate, d.Logger))
			r.Get("/users/me", h.MeHandler)
			r.Get("/users/{userID}/hooks", h.UserHooksHandler)
			r.Route("/hooks", func(r chi.Router) {
				r.Get("/", h.ListHooksHandler)
				r.Post("/", h.CreateHookHandler)
				r.Get("/{hookID}", h.GetHookHandler)
				r.Put("/{hookID}", h.UpdateHookHandler)
				r.Delete("/{hookID}", h.DeleteHookHandler)
			})
		})
	})

	return r
}
