// internal/app/features/batches/routes.go
package batches

import (
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the batches feature. Mounted under
// /batches. Reads are open to any signed-in user; mutations are
// admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeBatches)
	r.Get("/{id}", h.ServeBatch)
	r.Get("/{id}/stats", h.ServeBatchStats)

	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireRole(authz.RoleAdmin))

		ar.Post("/", h.HandleCreateBatch)
		ar.Put("/{id}", h.HandleUpdateBatch)
		ar.Delete("/{id}", h.HandleDeleteBatch)
		ar.Post("/{id}/students", h.HandleAddStudent)
		ar.Delete("/{id}/students/{studentID}", h.HandleRemoveStudent)
		ar.Post("/{id}/tutor", h.HandleAssignTutor)
	})

	return r
}
