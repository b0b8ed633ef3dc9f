package doubts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/normalize"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type askInput struct {
	Question string `json:"question" validate:"required,max=2000" label:"Question"`
}

// HandleAskDoubt records a student's question for their tutor.
// POST /doubts
func (h *Handler) HandleAskDoubt(w http.ResponseWriter, r *http.Request) {
	_, _, studentID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	var in askInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		respond.Error(w, http.StatusBadRequest, result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	doubt, err := h.Doubts.Create(ctx, models.Doubt{
		StudentID: studentID,
		Question:  in.Question,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "create doubt failed")
		return
	}

	h.Log.Info("doubt asked",
		zap.String("doubt_id", doubt.ID.Hex()),
		zap.String("student_id", studentID.Hex()))
	respond.JSON(w, http.StatusCreated, doubt)
}

// ServeStudentDoubts lists the signed-in student's doubts, newest first.
// GET /doubts/student
func (h *Handler) ServeStudentDoubts(w http.ResponseWriter, r *http.Request) {
	_, _, studentID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Doubts.ListByStudent(ctx, studentID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "list doubts failed")
		return
	}
	if list == nil {
		list = []models.Doubt{}
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeTutorDoubts lists doubts from every student in the tutor's
// batches, newest first.
// GET /doubts/tutor
func (h *Handler) ServeTutorDoubts(w http.ResponseWriter, r *http.Request) {
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

	list := []models.Doubt{}
	if len(studentIDs) > 0 {
		found, err := h.Doubts.ListByStudents(ctx, studentIDs)
		if err != nil {
			h.ErrLog.ServerError(w, r, err, "list doubts failed")
			return
		}
		if found != nil {
			list = found
		}
	}
	respond.JSON(w, http.StatusOK, list)
}

type replyInput struct {
	Reply string `json:"reply" validate:"required,max=2000" label:"Reply"`
}

// HandleReplyDoubt attaches a tutor's reply and marks the doubt
// resolved.
// PUT /doubts/{id}/reply
func (h *Handler) HandleReplyDoubt(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid doubt ID.")
		return
	}

	var in replyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		respond.Error(w, http.StatusBadRequest, result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Doubts.Reply(ctx, id, normalize.Text(in.Reply)); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Doubt not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "reply to doubt failed")
		return
	}

	replied, err := h.Doubts.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "reload doubt failed")
		return
	}

	h.Log.Info("doubt replied", zap.String("doubt_id", id.Hex()))
	respond.JSON(w, http.StatusOK, replied)
}
