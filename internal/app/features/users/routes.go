// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the users feature. Mounted under /users.
// Everything here requires a signed-in user; the dashboards and the admin
// operations are additionally role-gated.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	admin := auth.RequireRole(authz.RoleAdmin)

	r.With(admin).Get("/role/{role}", h.ServeUsersByRole)
	r.With(admin).Get("/admin/stats", h.ServeAdminStats)
	r.With(auth.RequireRole(authz.RoleTutor, authz.RoleAdmin)).Get("/tutor/stats", h.ServeTutorStats)
	r.With(auth.RequireRole(authz.RoleStudent)).Get("/student/stats", h.ServeStudentStats)

	r.Get("/{id}", h.ServeUser)
	r.With(admin).Put("/{id}", h.HandleUpdateUser)
	r.With(admin).Delete("/{id}", h.HandleDeleteUser)

	return r
}
