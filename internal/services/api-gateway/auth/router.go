package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/NordCoder/go-auth/internal/obs"
)

type RouterOpts struct {
	AllowedOrigin  string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter mounts the auth endpoints. Anything unmatched, including a known path with the
// wrong method, gets the JSON 404.
func NewRouter(h *Handler, o RouterOpts) http.Handler {
	log := o.Logger
	if log == nil {
		log = h.log
	}

	r := chi.NewRouter()
	r.Use(obs.HTTPMetrics(routePattern))
	r.Use(corsMiddleware(o.AllowedOrigin))
	r.Use(recoveryMiddleware(log))
	r.Use(deadlineMiddleware(o.RequestTimeout))

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh-token", h.RefreshToken)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	return obs.HTTPHandler(r, "auth-gateway")
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}
