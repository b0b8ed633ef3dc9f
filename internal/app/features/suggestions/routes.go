// internal/app/features/suggestions/routes.go
package suggestions

import (
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the suggestions feature. Mounted
// under /suggestions; students only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.With(auth.RequireRole(authz.RoleStudent)).Get("/", h.ServeSuggestions)
	return r
}
