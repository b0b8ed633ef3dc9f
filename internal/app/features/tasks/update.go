package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	taskstore "github.com/dalemusser/studytrack/internal/app/store/tasks"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// loadOwnedTask fetches the task and enforces the creator rule. It
// writes the error response itself and returns nil on failure.
func (h *Handler) loadOwnedTask(ctx context.Context, w http.ResponseWriter, r *http.Request) *models.Task {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return nil
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid task ID.")
		return nil
	}

	task, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Task not found.")
			return nil
		}
		h.ErrLog.ServerError(w, r, err, "load task failed")
		return nil
	}
	if role != authz.RoleAdmin && task.CreatedBy != userID {
		respond.Error(w, http.StatusForbidden, "Only the task's creator can change it.")
		return nil
	}
	return task
}

type updateTaskInput struct {
	Title       string    `json:"title" validate:"required,max=200" label:"Title"`
	Description string    `json:"description" validate:"max=2000" label:"Description"`
	DueDate     time.Time `json:"dueDate" validate:"required" label:"Due date"`
	IsDaily     bool      `json:"isDaily"`
}

// HandleUpdateTask replaces a task's content and schedule.
// PUT /tasks/{id}
func (h *Handler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var in updateTaskInput
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

	task := h.loadOwnedTask(ctx, w, r)
	if task == nil {
		return
	}

	err := h.Tasks.Update(ctx, task.ID, taskstore.TaskUpdate{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		IsDaily:     in.IsDaily,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "update task failed")
		return
	}

	updated, err := h.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "reload task failed")
		return
	}

	h.Log.Info("task updated", zap.String("task_id", task.ID.Hex()))
	respond.JSON(w, http.StatusOK, updated)
}

// HandleDeleteTask removes a task.
// DELETE /tasks/{id}
func (h *Handler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task := h.loadOwnedTask(ctx, w, r)
	if task == nil {
		return
	}

	n, err := h.Tasks.Delete(ctx, task.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "delete task failed")
		return
	}
	if n == 0 {
		respond.Error(w, http.StatusNotFound, "Task not found.")
		return
	}

	h.Log.Info("task deleted", zap.String("task_id", task.ID.Hex()))
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Task deleted."})
}
