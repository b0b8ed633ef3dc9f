// internal/app/features/suggestions/handler.go
package suggestions

import (
	"context"
	"net/http"
	"time"

	roadmapstore "github.com/dalemusser/studytrack/internal/app/store/roadmaps"
	submissionstore "github.com/dalemusser/studytrack/internal/app/store/submissions"
	taskstore "github.com/dalemusser/studytrack/internal/app/store/tasks"
	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the suggestion report for the signed-in student.
type Handler struct {
	DB          *mongo.Database
	Users       *userstore.Store
	Roadmaps    *roadmapstore.Store
	Tasks       *taskstore.Store
	Submissions *submissionstore.Store
	Log         *zap.Logger
	ErrLog      *respond.ErrorLogger
}

// NewHandler constructs a suggestions Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, errLog *respond.ErrorLogger) *Handler {
	return &Handler{
		DB:          db,
		Users:       userstore.New(db),
		Roadmaps:    roadmapstore.New(db),
		Tasks:       taskstore.New(db),
		Submissions: submissionstore.New(db),
		Log:         logger,
		ErrLog:      errLog,
	}
}

// ServeSuggestions builds the coaching report for the signed-in
// student from their batch's tasks and their reviewed submissions.
// GET /suggestions
func (h *Handler) ServeSuggestions(w http.ResponseWriter, r *http.Request) {
	_, _, studentID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	student, err := h.Users.GetByID(ctx, studentID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load student failed")
		return
	}
	if student.BatchID == nil {
		respond.Error(w, http.StatusBadRequest, "Student not assigned to any batch.")
		return
	}

	roadmapIDs, err := h.Roadmaps.IDsByBatch(ctx, *student.BatchID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load roadmaps failed")
		return
	}
	var tasks []models.Task
	if len(roadmapIDs) > 0 {
		if tasks, err = h.Tasks.ListByRoadmaps(ctx, roadmapIDs); err != nil {
			h.ErrLog.ServerError(w, r, err, "load tasks failed")
			return
		}
	}

	subs, err := h.Submissions.ListByStudent(ctx, studentID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load submissions failed")
		return
	}
	var reviewed []models.Submission
	for _, sub := range subs {
		if sub.IsReviewed {
			reviewed = append(reviewed, sub)
		}
	}

	report := Build(student.Name, tasks, reviewed, time.Now())
	respond.JSON(w, http.StatusOK, report)
}
