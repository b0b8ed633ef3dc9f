package submissions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	submissionstore "github.com/dalemusser/studytrack/internal/app/store/submissions"
	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/app/system/txn"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type reviewInput struct {
	Feedback string `json:"feedback" validate:"max=2000" label:"Feedback"`
	Stars    int    `json:"stars" validate:"gte=0,lte=5" label:"Stars"`
}

// HandleReviewSubmission attaches feedback and a star rating to a
// submission and credits the stars to the student. A submission can be
// reviewed once; the review and the star award land together.
// PUT /submissions/{id}/review
func (h *Handler) HandleReviewSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid submission ID.")
		return
	}

	var in reviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if result := inputval.Validate(in); result.HasErrors() {
		respond.Error(w, http.StatusBadRequest, result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sub, err := h.Submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "Submission not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load submission failed")
		return
	}

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.Submissions.Review(ctx, id, in.Feedback, in.Stars); err != nil {
			return err
		}
		if in.Stars > 0 {
			return h.Users.AddStars(ctx, sub.StudentID, in.Stars)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, submissionstore.ErrAlreadyReviewed):
			respond.Error(w, http.StatusBadRequest, "This submission has already been reviewed.")
		case errors.Is(err, mongo.ErrNoDocuments):
			respond.Error(w, http.StatusNotFound, "Submission not found.")
		default:
			h.ErrLog.ServerError(w, r, err, "review submission failed")
		}
		return
	}

	reviewed, err := h.Submissions.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "reload submission failed")
		return
	}

	h.Log.Info("submission reviewed",
		zap.String("submission_id", id.Hex()),
		zap.Int("stars", in.Stars))
	respond.JSON(w, http.StatusOK, reviewed)
}
