package batches

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type enrollInput struct {
	StudentID string `json:"studentId"`
}

// HandleAddStudent enrolls a student in the batch. Enrollment is a
// move: a student in another batch is taken off that roster first.
// POST /batches/{id}/students
func (h *Handler) HandleAddStudent(w http.ResponseWriter, r *http.Request) {
	batchID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid batch ID.")
		return
	}

	var in enrollInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	studentID, err := primitive.ObjectIDFromHex(in.StudentID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid student ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Membership.AddStudent(ctx, batchID, studentID); err != nil {
		respondMembershipErr(w, r, h, err, "add student failed")
		return
	}

	batch, err := h.Batches.GetByID(ctx, batchID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "reload batch failed")
		return
	}

	h.Log.Info("student enrolled",
		zap.String("batch_id", batchID.Hex()),
		zap.String("student_id", studentID.Hex()))
	respond.JSON(w, http.StatusOK, batch)
}

// HandleRemoveStudent takes a student off the batch roster.
// DELETE /batches/{id}/students/{studentID}
func (h *Handler) HandleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	batchID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid batch ID.")
		return
	}
	studentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid student ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Membership.RemoveStudent(ctx, batchID, studentID); err != nil {
		respondMembershipErr(w, r, h, err, "remove student failed")
		return
	}

	batch, err := h.Batches.GetByID(ctx, batchID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "reload batch failed")
		return
	}

	h.Log.Info("student removed",
		zap.String("batch_id", batchID.Hex()),
		zap.String("student_id", studentID.Hex()))
	respond.JSON(w, http.StatusOK, batch)
}

type assignTutorInput struct {
	TutorID string `json:"tutorId"`
}

// HandleAssignTutor sets the batch tutor, replacing and detaching any
// previous tutor. A tutor already running another batch is moved.
// POST /batches/{id}/tutor
func (h *Handler) HandleAssignTutor(w http.ResponseWriter, r *http.Request) {
	batchID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid batch ID.")
		return
	}

	var in assignTutorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	tutorID, err := primitive.ObjectIDFromHex(in.TutorID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid tutor ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Membership.AssignTutor(ctx, batchID, tutorID); err != nil {
		respondMembershipErr(w, r, h, err, "assign tutor failed")
		return
	}

	batch, err := h.Batches.GetByID(ctx, batchID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "reload batch failed")
		return
	}

	h.Log.Info("tutor assigned",
		zap.String("batch_id", batchID.Hex()),
		zap.String("tutor_id", tutorID.Hex()))
	respond.JSON(w, http.StatusOK, batch)
}
