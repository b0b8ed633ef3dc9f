package submissions

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeStudentSubmissions lists the signed-in student's submissions,
// newest first.
// GET /submissions/student
func (h *Handler) ServeStudentSubmissions(w http.ResponseWriter, r *http.Request) {
	_, _, studentID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Submissions.ListByStudent(ctx, studentID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "list submissions failed")
		return
	}
	if list == nil {
		list = []models.Submission{}
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeTutorSubmissions lists submissions from every student in the
// tutor's batches, newest first.
// GET /submissions/tutor
func (h *Handler) ServeTutorSubmissions(w http.ResponseWriter, r *http.Request) {
	_, _, tutorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	batches, err := h.Batches.FindByTutor(ctx, tutorID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load tutor batches failed")
		return
	}
	var studentIDs []primitive.ObjectID
	for _, b := range batches {
		studentIDs = append(studentIDs, b.StudentIDs...)
	}

	list := []models.Submission{}
	if len(studentIDs) > 0 {
		found, err := h.Submissions.ListByStudents(ctx, studentIDs)
		if err != nil {
			h.ErrLog.ServerError(w, r, err, "list submissions failed")
			return
		}
		if found != nil {
			list = found
		}
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeSubmission returns one submission. Students can read only
// their own; tutors and admins can read any.
// GET /submissions/{id}
func (h *Handler) ServeSubmission(w http.ResponseWriter, r *http.Request) {
	sub := h.loadAccessibleSubmission(w, r)
	if sub == nil {
		return
	}
	respond.JSON(w, http.StatusOK, sub)
}

// loadAccessibleSubmission fetches the submission named in the URL and
// enforces read access. It writes the error response itself and
// returns nil on failure.
func (h *Handler) loadAccessibleSubmission(w http.ResponseWriter, r *http.Request) *models.Submission {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return nil
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid submission ID.")
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := h.Submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Submission not found.")
			return nil
		}
		h.ErrLog.ServerError(w, r, err, "load submission failed")
		return nil
	}
	if role == authz.RoleStudent && sub.StudentID != userID {
		respond.Error(w, http.StatusForbidden, "You can only view your own submissions.")
		return nil
	}
	return sub
}
