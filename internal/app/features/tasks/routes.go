// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the tasks feature. Mounted under
// /tasks. Reads are open to any signed-in user; mutations require the
// tutor role (creator checks happen in the handlers).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/roadmap/{roadmapID}", h.ServeTasksForRoadmap)
	r.Get("/{id}", h.ServeTask)

	r.Group(func(tr chi.Router) {
		tr.Use(auth.RequireRole(authz.RoleTutor, authz.RoleAdmin))

		tr.Post("/", h.HandleCreateTask)
		tr.Put("/{id}", h.HandleUpdateTask)
		tr.Delete("/{id}", h.HandleDeleteTask)
	})

	return r
}
