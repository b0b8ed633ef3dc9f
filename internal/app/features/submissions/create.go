package submissions

import (
	"context"
	"errors"
	"net/http"

	submissionstore "github.com/dalemusser/studytrack/internal/app/store/submissions"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/normalize"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/app/system/uploads"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxUploadBytes caps the multipart form memory and attachment size.
const maxUploadBytes = 32 << 20

// HandleCreateSubmission records a student's attempt at a task, with
// an optional file attachment. One submission per (student, task); a
// second attempt is a conflict. If anything fails after the file has
// been stored, the file is removed again.
// POST /submissions
func (h *Handler) HandleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	_, _, studentID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid multipart form.")
		return
	}

	taskID, err := primitive.ObjectIDFromHex(normalize.QueryParam(r.FormValue("taskId")))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid task ID.")
		return
	}
	content := normalize.Text(r.FormValue("content"))
	if content == "" {
		respond.Error(w, http.StatusBadRequest, "Submission content is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Task not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load task failed")
		return
	}

	exists, err := h.Submissions.Exists(ctx, studentID, taskID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "check submission failed")
		return
	}
	if exists {
		respond.Error(w, http.StatusConflict, "You have already submitted this task.")
		return
	}

	sub := models.Submission{
		StudentID: studentID,
		TaskID:    taskID,
		Content:   content,
	}

	file, header, fileErr := r.FormFile("file")
	if fileErr == nil && header != nil && header.Size > 0 {
		defer file.Close()
		if header.Size > maxUploadBytes {
			respond.Error(w, http.StatusBadRequest, "Attachment is too large.")
			return
		}
		contentType := header.Header.Get("Content-Type")
		info, err := uploads.Save(ctx, h.Storage, header.Filename, file, header.Size, contentType)
		if err != nil {
			h.Log.Error("attachment upload failed", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "Failed to store the attachment.")
			return
		}
		sub.FilePath = info.Path
		sub.FileName = header.Filename
		sub.FileType = contentType
		sub.FileSize = header.Size
	}

	created, err := h.Submissions.Create(ctx, sub)
	if err != nil {
		// The attachment must not outlive a failed insert.
		if rmErr := uploads.Remove(ctx, h.Storage, sub.FilePath); rmErr != nil {
			h.Log.Warn("orphaned attachment cleanup failed",
				zap.String("path", sub.FilePath), zap.Error(rmErr))
		}
		if errors.Is(err, submissionstore.ErrDuplicate) {
			respond.Error(w, http.StatusConflict, "You have already submitted this task.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "create submission failed")
		return
	}

	h.Log.Info("submission created",
		zap.String("submission_id", created.ID.Hex()),
		zap.String("task_id", taskID.Hex()),
		zap.String("student_id", studentID.Hex()))
	respond.JSON(w, http.StatusCreated, created)
}
