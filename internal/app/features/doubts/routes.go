// internal/app/features/doubts/routes.go
package doubts

import (
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the doubts feature. Mounted under
// /doubts.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	student := auth.RequireRole(authz.RoleStudent)
	tutor := auth.RequireRole(authz.RoleTutor, authz.RoleAdmin)

	r.With(student).Post("/", h.HandleAskDoubt)
	r.With(student).Get("/student", h.ServeStudentDoubts)
	r.With(tutor).Get("/tutor", h.ServeTutorDoubts)
	r.With(tutor).Put("/{id}/reply", h.HandleReplyDoubt)

	return r
}
