package batches

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	batchstore "github.com/dalemusser/studytrack/internal/app/store/batches"
	"github.com/dalemusser/studytrack/internal/app/store/membership"
	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createBatchInput struct {
	Name       string   `json:"name" validate:"required,max=100" label:"Batch name"`
	TutorID    string   `json:"tutorId" validate:"omitempty,objectid" label:"Tutor ID"`
	StudentIDs []string `json:"studentIds" validate:"dive,objectid" label:"Student IDs"`
}

// HandleCreateBatch creates a batch with an optional tutor and initial
// roster. Students already enrolled elsewhere are moved.
// POST /batches
func (h *Handler) HandleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var in createBatchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		respond.Error(w, http.StatusBadRequest, result.First())
		return
	}

	var tutorID *primitive.ObjectID
	if in.TutorID != "" {
		tid, err := primitive.ObjectIDFromHex(in.TutorID)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "Invalid tutor ID.")
			return
		}
		tutorID = &tid
	}
	studentIDs, err := parseObjectIDs(in.StudentIDs)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid student ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	batch, err := h.Membership.CreateBatch(ctx, in.Name, tutorID, studentIDs)
	if err != nil {
		if errors.Is(err, batchstore.ErrDuplicateName) {
			respond.Error(w, http.StatusConflict, "A batch with this name already exists.")
			return
		}
		respondMembershipErr(w, r, h, err, "create batch failed")
		return
	}

	h.Log.Info("batch created",
		zap.String("batch_id", batch.ID.Hex()),
		zap.String("name", batch.Name))
	respond.JSON(w, http.StatusCreated, batch)
}

func parseObjectIDs(hexIDs []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// respondMembershipErr maps membership manager sentinels onto HTTP
// statuses; anything unrecognized is a server error.
func respondMembershipErr(w http.ResponseWriter, r *http.Request, h *Handler, err error, logMsg string) {
	switch {
	case errors.Is(err, membership.ErrBatchNotFound):
		respond.Error(w, http.StatusNotFound, "Batch not found.")
	case errors.Is(err, membership.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, "User not found.")
	case errors.Is(err, membership.ErrNotATutor):
		respond.Error(w, http.StatusBadRequest, "User is not a tutor.")
	case errors.Is(err, membership.ErrNotAStudent):
		respond.Error(w, http.StatusBadRequest, "User is not a student.")
	case errors.Is(err, membership.ErrAlreadyInBatch):
		respond.Error(w, http.StatusConflict, "Student is already in this batch.")
	case errors.Is(err, membership.ErrNotInBatch):
		respond.Error(w, http.StatusBadRequest, "Student is not in this batch.")
	default:
		h.ErrLog.ServerError(w, r, err, logMsg)
	}
}
