package batches

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type batchTopStudent struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Stars int                `json:"stars"`
}

type batchStats struct {
	BatchName    string            `json:"batchName"`
	TutorName    string            `json:"tutorName"`
	StudentCount int               `json:"studentCount"`
	AverageStars float64           `json:"averageStars"`
	TopStudents  []batchTopStudent `json:"topStudents"`
}

// ServeBatchStats returns the batch leaderboard: student count, mean
// stars, and the top five students by stars.
// GET /batches/{id}/stats
func (h *Handler) ServeBatchStats(w http.ResponseWriter, r *http.Request) {
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

	out := batchStats{
		BatchName:    batch.Name,
		TutorName:    "No tutor assigned",
		StudentCount: len(batch.StudentIDs),
		TopStudents:  []batchTopStudent{},
	}
	if batch.TutorID != nil {
		if tutor, err := h.Users.GetByID(ctx, *batch.TutorID); err == nil {
			out.TutorName = tutor.Name
		}
	}

	if len(batch.StudentIDs) > 0 {
		students, err := h.Users.ListByIDs(ctx, batch.StudentIDs)
		if err != nil {
			h.ErrLog.ServerError(w, r, err, "load batch students failed")
			return
		}
		total := 0
		for _, s := range students {
			total += s.Stars
		}
		if len(students) > 0 {
			out.AverageStars = float64(total) / float64(len(students))
		}

		top, err := h.Users.TopStudents(ctx, &batch.ID, 5)
		if err != nil {
			h.ErrLog.ServerError(w, r, err, "rank students failed")
			return
		}
		for _, s := range top {
			out.TopStudents = append(out.TopStudents, batchTopStudent{
				ID:    s.ID,
				Name:  s.Name,
				Email: s.Email,
				Stars: s.Stars,
			})
		}
	}

	respond.JSON(w, http.StatusOK, out)
}
