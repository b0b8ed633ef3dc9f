package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/store/membership"
	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/normalize"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// updateUserInput uses RawMessage for batchId so the handler can tell
// "field absent" from an explicit null (which clears the assignment).
type updateUserInput struct {
	Name    *string         `json:"name"`
	Email   *string         `json:"email"`
	Role    *string         `json:"role"`
	BatchID json.RawMessage `json:"batchId"`
}

// HandleUpdateUser applies a partial admin update to a user. Role and
// batch changes flow through the membership manager so batch rosters
// stay consistent.
// PUT /users/{id}
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	var in updateUserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	var change membership.UserChange
	if in.Role != nil {
		role := normalize.Role(*in.Role)
		if !inputval.IsValidRole(role) {
			respond.Error(w, http.StatusBadRequest, "Role must be admin, tutor, or student.")
			return
		}
		change.Role = &role
	}
	if len(in.BatchID) > 0 {
		if string(in.BatchID) == "null" {
			change.ClearBatch = true
		} else {
			var hex string
			if err := json.Unmarshal(in.BatchID, &hex); err != nil || !inputval.IsValidObjectID(hex) {
				respond.Error(w, http.StatusBadRequest, "Batch ID must be a valid ID or null.")
				return
			}
			bid, err := primitive.ObjectIDFromHex(normalize.QueryParam(hex))
			if err != nil {
				respond.Error(w, http.StatusBadRequest, "Batch ID must be a valid ID or null.")
				return
			}
			change.BatchID = &bid
		}
	}
	if in.Email != nil && !inputval.IsValidEmail(*in.Email) {
		respond.Error(w, http.StatusBadRequest, "A valid email address is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	current, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "User not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load user failed")
		return
	}

	if in.Name != nil || in.Email != nil {
		name := current.Name
		email := current.Email
		if in.Name != nil {
			name = *in.Name
		}
		if in.Email != nil {
			email = *in.Email
		}
		if err := h.Users.UpdateNameEmail(ctx, id, name, email); err != nil {
			if errors.Is(err, userstore.ErrDuplicateEmail) {
				respond.Error(w, http.StatusConflict, "A user with this email already exists.")
				return
			}
			h.ErrLog.ServerError(w, r, err, "update user failed")
			return
		}
	}

	if change.Role != nil || change.BatchID != nil || change.ClearBatch {
		if err := h.Membership.ApplyUserChange(ctx, id, change); err != nil {
			respondMembershipErr(w, r, h, err, "apply user change failed")
			return
		}
	}

	updated, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "reload user failed")
		return
	}

	h.Log.Info("user updated", zap.String("user_id", id.Hex()))
	respond.JSON(w, http.StatusOK, updated)
}

// HandleDeleteUser removes a user and detaches them from any batch.
// DELETE /users/{id}
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Membership.DeleteUser(ctx, id); err != nil {
		respondMembershipErr(w, r, h, err, "delete user failed")
		return
	}

	h.Log.Info("user deleted", zap.String("user_id", id.Hex()))
	respond.JSON(w, http.StatusOK, map[string]string{"message": "User deleted."})
}

// respondMembershipErr maps membership manager sentinels onto HTTP
// statuses; anything unrecognized is a server error.
func respondMembershipErr(w http.ResponseWriter, r *http.Request, h *Handler, err error, logMsg string) {
	switch {
	case errors.Is(err, membership.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, "User not found.")
	case errors.Is(err, membership.ErrBatchNotFound):
		respond.Error(w, http.StatusNotFound, "Batch not found.")
	case errors.Is(err, membership.ErrNotATutor):
		respond.Error(w, http.StatusBadRequest, "User is not a tutor.")
	case errors.Is(err, membership.ErrNotAStudent):
		respond.Error(w, http.StatusBadRequest, "User is not a student.")
	case errors.Is(err, membership.ErrAlreadyInBatch):
		respond.Error(w, http.StatusConflict, "Student is already in this batch.")
	case errors.Is(err, membership.ErrNotInBatch):
		respond.Error(w, http.StatusBadRequest, "Student is not in this batch.")
	default:
		h.ErrLog.ServerError(w, r, err, logMsg)
	}
}
