package batches

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

// ServeBatches lists all batches sorted by name.
// GET /batches
func (h *Handler) ServeBatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Batches.List(ctx)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "list batches failed")
		return
	}
	if list == nil {
		list = []models.Batch{}
	}
	respond.JSON(w, http.StatusOK, list)
}

// batchDetail is a batch with its tutor and roster expanded.
type batchDetail struct {
	models.Batch
	Tutor    *models.User  `json:"tutor,omitempty"`
	Students []models.User `json:"students"`
}

// ServeBatch returns one batch with tutor and students populated.
// GET /batches/{id}
func (h *Handler) ServeBatch(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid batch ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	batch, err := h.Batches.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Batch not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load batch failed")
		return
	}

	detail := batchDetail{Batch: *batch, Students: []models.User{}}
	if batch.TutorID != nil {
		if tutor, err := h.Users.GetByID(ctx, *batch.TutorID); err == nil {
			detail.Tutor = tutor
		}
	}
	if len(batch.StudentIDs) > 0 {
		students, err := h.Users.ListByIDs(ctx, batch.StudentIDs)
		if err != nil {
			h.ErrLog.ServerError(w, r, err, "load batch students failed")
			return
		}
		detail.Students = students
	}

	respond.JSON(w, http.StatusOK, detail)
}
