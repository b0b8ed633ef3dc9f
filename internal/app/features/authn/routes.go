// internal/app/features/authn/routes.go
package authn

import (
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the authn feature. Mounted under /auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Login is the only unauthenticated endpoint.
	r.Post("/login", h.HandleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/profile", h.ServeProfile)

		pr.With(auth.RequireRole(authz.RoleAdmin)).
			Post("/register", h.HandleRegister)
	})

	return r
}
