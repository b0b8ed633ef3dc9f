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
	"github.com/dalemusser/studytrack/internal/app/system/txn"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// loadOwnedRoadmap fetches the roadmap and enforces the creator rule:
// only the tutor who created a roadmap (or an admin) may change it.
// It writes the error response itself and returns nil on failure.
func (h *Handler) loadOwnedRoadmap(ctx context.Context, w http.ResponseWriter, r *http.Request) *models.Roadmap {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return nil
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid roadmap ID.")
		return nil
	}

	roadmap, err := h.Roadmaps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Roadmap not found.")
			return nil
		}
		h.ErrLog.ServerError(w, r, err, "load roadmap failed")
		return nil
	}
	if role != authz.RoleAdmin && roadmap.CreatedBy != userID {
		respond.Error(w, http.StatusForbidden, "Only the roadmap's creator can change it.")
		return nil
	}
	return roadmap
}

type updateRoadmapInput struct {
	Title       string `json:"title" validate:"required,max=200" label:"Title"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
}

// HandleUpdateRoadmap replaces a roadmap's title and description.
// PUT /roadmaps/{id}
func (h *Handler) HandleUpdateRoadmap(w http.ResponseWriter, r *http.Request) {
	var in updateRoadmapInput
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

	roadmap := h.loadOwnedRoadmap(ctx, w, r)
	if roadmap == nil {
		return
	}

	if err := h.Roadmaps.Update(ctx, roadmap.ID, in.Title, in.Description); err != nil {
		h.ErrLog.ServerError(w, r, err, "update roadmap failed")
		return
	}

	updated, err := h.Roadmaps.GetByID(ctx, roadmap.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "reload roadmap failed")
		return
	}

	h.Log.Info("roadmap updated", zap.String("roadmap_id", roadmap.ID.Hex()))
	respond.JSON(w, http.StatusOK, updated)
}

// HandleDeleteRoadmap removes a roadmap and all of its tasks.
// DELETE /roadmaps/{id}
func (h *Handler) HandleDeleteRoadmap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	roadmap := h.loadOwnedRoadmap(ctx, w, r)
	if roadmap == nil {
		return
	}

	// Tasks go with the roadmap; neither survives alone.
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if _, err := h.Tasks.DeleteByRoadmap(ctx, roadmap.ID); err != nil {
			return err
		}
		n, err := h.Roadmaps.Delete(ctx, roadmap.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Roadmap not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "delete roadmap failed")
		return
	}

	h.Log.Info("roadmap deleted", zap.String("roadmap_id", roadmap.ID.Hex()))
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Roadmap and its tasks deleted."})
}
