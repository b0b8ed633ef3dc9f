package authn

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginInput struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// HandleLogin checks email+password and issues a bearer token.
// POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if v := inputval.Validate(in); v.HasErrors() {
		respond.Error(w, http.StatusBadRequest, v.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Same message as a bad password so the response does not
			// reveal which accounts exist.
			respond.Error(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "login lookup failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	token, err := h.Tokens.IssueToken(user.ID.Hex(), user.Role)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "token issue failed")
		return
	}

	h.Log.Info("user logged in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))

	respond.JSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}
