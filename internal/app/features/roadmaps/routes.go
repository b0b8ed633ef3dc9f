// internal/app/features/roadmaps/routes.go
package roadmaps

import (
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the roadmaps feature. Mounted under
// /roadmaps. Reads are open to any signed-in user; mutations require
// the tutor role (creator checks happen in the handlers).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/batch/{batchID}", h.ServeRoadmapsForBatch)
	r.Get("/{id}", h.ServeRoadmap)
	r.Get("/{id}/tasks", h.ServeRoadmapTasks)

	r.Group(func(tr chi.Router) {
		tr.Use(auth.RequireRole(authz.RoleTutor, authz.RoleAdmin))

		tr.Post("/", h.HandleCreateRoadmap)
		tr.Put("/{id}", h.HandleUpdateRoadmap)
		tr.Delete("/{id}", h.HandleDeleteRoadmap)
	})

	return r
}
