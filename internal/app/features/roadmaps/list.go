package roadmaps

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeRoadmapsForBatch lists a batch's roadmaps, newest first.
// GET /roadmaps/batch/{batchID}
func (h *Handler) ServeRoadmapsForBatch(w http.ResponseWriter, r *http.Request) {
	batchID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "batchID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid batch ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Roadmaps.ListByBatch(ctx, batchID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "list roadmaps failed")
		return
	}
	if list == nil {
		list = []models.Roadmap{}
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeRoadmap returns one roadmap.
// GET /roadmaps/{id}
func (h *Handler) ServeRoadmap(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid roadmap ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	roadmap, err := h.Roadmaps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Roadmap not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load roadmap failed")
		return
	}
	respond.JSON(w, http.StatusOK, roadmap)
}

// roadmapWithTasks is a roadmap and its tasks in due-date order.
type roadmapWithTasks struct {
	models.Roadmap
	Tasks []models.Task `json:"tasks"`
}

// ServeRoadmapTasks returns a roadmap with its tasks attached.
// GET /roadmaps/{id}/tasks
func (h *Handler) ServeRoadmapTasks(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid roadmap ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	roadmap, err := h.Roadmaps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Roadmap not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load roadmap failed")
		return
	}

	tasks, err := h.Tasks.ListByRoadmap(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "list tasks failed")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	respond.JSON(w, http.StatusOK, roadmapWithTasks{Roadmap: *roadmap, Tasks: tasks})
}
