// internal/app/features/submissions/routes.go
package submissions

import (
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the submissions feature. Mounted
// under /submissions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	student := auth.RequireRole(authz.RoleStudent)
	tutor := auth.RequireRole(authz.RoleTutor, authz.RoleAdmin)

	r.With(student).Post("/", h.HandleCreateSubmission)
	r.With(student).Get("/student", h.ServeStudentSubmissions)
	r.With(tutor).Get("/tutor", h.ServeTutorSubmissions)
	r.With(tutor).Put("/{id}/review", h.HandleReviewSubmission)

	r.Get("/{id}", h.ServeSubmission)
	r.Get("/{id}/download", h.ServeDownload)

	return r
}
