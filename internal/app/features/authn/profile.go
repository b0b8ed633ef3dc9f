package authn

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeProfile returns the signed-in user's full record.
// GET /auth/profile
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, http.StatusNotFound, "User not found.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "profile load failed")
		return
	}

	respond.JSON(w, http.StatusOK, user)
}
