package batches

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	batchstore "github.com/dalemusser/studytrack/internal/app/store/batches"
	"github.com/dalemusser/studytrack/internal/app/store/membership"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type updateBatchInput struct {
	Name       *string   `json:"name"`
	TutorID    *string   `json:"tutorId"`
	StudentIDs *[]string `json:"studentIds"`
}

// HandleUpdateBatch applies a partial update. A provided student list
// replaces the roster: dropped students are detached, new ones moved in.
// PUT /batches/{id}
func (h *Handler) HandleUpdateBatch(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid batch ID.")
		return
	}

	var in updateBatchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if in.Name != nil && *in.Name == "" {
		respond.Error(w, http.StatusBadRequest, "Batch name is required.")
		return
	}

	var upd membership.BatchUpdate
	upd.Name = in.Name
	if in.TutorID != nil {
		tid, err := primitive.ObjectIDFromHex(*in.TutorID)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "Invalid tutor ID.")
			return
		}
		upd.TutorID = &tid
	}
	if in.StudentIDs != nil {
		sids, err := parseObjectIDs(*in.StudentIDs)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "Invalid student ID.")
			return
		}
		upd.StudentIDs = &sids
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Membership.UpdateBatch(ctx, id, upd); err != nil {
		if errors.Is(err, batchstore.ErrDuplicateName) {
			respond.Error(w, http.StatusConflict, "A batch with this name already exists.")
			return
		}
		respondMembershipErr(w, r, h, err, "update batch failed")
		return
	}

	batch, err := h.Batches.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "reload batch failed")
		return
	}

	h.Log.Info("batch updated", zap.String("batch_id", id.Hex()))
	respond.JSON(w, http.StatusOK, batch)
}

// HandleDeleteBatch removes a batch and detaches its tutor and students.
// DELETE /batches/{id}
func (h *Handler) HandleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid batch ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Membership.DeleteBatch(ctx, id); err != nil {
		respondMembershipErr(w, r, h, err, "delete batch failed")
		return
	}

	h.Log.Info("batch deleted", zap.String("batch_id", id.Hex()))
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Batch deleted."})
}
