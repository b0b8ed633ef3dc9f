package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type createTaskInput struct {
	RoadmapID   string    `json:"roadmapId" validate:"required,objectid" label:"Roadmap ID"`
	Title       string    `json:"title" validate:"required,max=200" label:"Title"`
	Description string    `json:"description" validate:"max=2000" label:"Description"`
	DueDate     time.Time `json:"dueDate" validate:"required" label:"Due date"`
	IsDaily     bool      `json:"isDaily"`
}

// HandleCreateTask adds a task to a roadmap. Only the roadmap's
// creator (or an admin) may add tasks to it.
// POST /tasks
func (h *Handler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	var in createTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		respond.Error(w, http.StatusBadRequest, result.First())
		return
	}
	roadmapID, err := primitive.ObjectIDFromHex(in.RoadmapID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid roadmap ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	roadmap, err := h.Roadmaps.GetByID(ctx, roadmapID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Roadmap not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load roadmap failed")
		return
	}
	if role != authz.RoleAdmin && roadmap.CreatedBy != userID {
		respond.Error(w, http.StatusForbidden, "Only the roadmap's creator can add tasks.")
		return
	}

	task, err := h.Tasks.Create(ctx, models.Task{
		RoadmapID:   roadmapID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		IsDaily:     in.IsDaily,
		CreatedBy:   userID,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "create task failed")
		return
	}

	h.Log.Info("task created",
		zap.String("task_id", task.ID.Hex()),
		zap.String("roadmap_id", roadmapID.Hex()))
	respond.JSON(w, http.StatusCreated, task)
}
