package roadmaps

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type createRoadmapInput struct {
	BatchID     string `json:"batchId" validate:"required,objectid" label:"Batch ID"`
	Title       string `json:"title" validate:"required,max=200" label:"Title"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
}

// HandleCreateRoadmap creates a roadmap for a batch. Tutors may only
// create roadmaps for the batch they run; admins for any batch.
// POST /roadmaps
func (h *Handler) HandleCreateRoadmap(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	var in createRoadmapInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		respond.Error(w, http.StatusBadRequest, result.First())
		return
	}
	batchID, err := primitive.ObjectIDFromHex(in.BatchID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid batch ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	batch, err := h.Batches.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Batch not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load batch failed")
		return
	}
	if role != authz.RoleAdmin {
		if batch.TutorID == nil || *batch.TutorID != userID {
			respond.Error(w, http.StatusForbidden, "You can only create roadmaps for your own batch.")
			return
		}
	}

	roadmap, err := h.Roadmaps.Create(ctx, models.Roadmap{
		BatchID:     batchID,
		Title:       in.Title,
		Description: in.Description,
		CreatedBy:   userID,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "create roadmap failed")
		return
	}

	h.Log.Info("roadmap created",
		zap.String("roadmap_id", roadmap.ID.Hex()),
		zap.String("batch_id", batchID.Hex()))
	respond.JSON(w, http.StatusCreated, roadmap)
}
