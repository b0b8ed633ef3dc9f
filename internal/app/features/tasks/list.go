package tasks

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

// ServeTasksForRoadmap lists a roadmap's tasks in due-date order.
// GET /tasks/roadmap/{roadmapID}
func (h *Handler) ServeTasksForRoadmap(w http.ResponseWriter, r *http.Request) {
	roadmapID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "roadmapID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid roadmap ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Tasks.ListByRoadmap(ctx, roadmapID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "list tasks failed")
		return
	}
	if list == nil {
		list = []models.Task{}
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeTask returns one task.
// GET /tasks/{id}
func (h *Handler) ServeTask(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid task ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Task not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load task failed")
		return
	}
	respond.JSON(w, http.StatusOK, task)
}
