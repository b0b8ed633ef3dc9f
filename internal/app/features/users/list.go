package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/normalize"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeUsersByRole lists all users holding one role.
// GET /users/role/{role}
func (h *Handler) ServeUsersByRole(w http.ResponseWriter, r *http.Request) {
	role := normalize.Role(chi.URLParam(r, "role"))
	if !inputval.IsValidRole(role) {
		respond.Error(w, http.StatusBadRequest, "Role must be admin, tutor, or student.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.ListByRole(ctx, role)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "list users by role failed")
		return
	}
	if list == nil {
		list = []models.User{}
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeUser returns one user by ID.
// GET /users/{id}
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "User not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "load user failed")
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
