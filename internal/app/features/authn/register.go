package authn

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/inputval"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type registerInput struct {
	Name     string `json:"name" validate:"required,max=100" label:"Name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required,min=8,max=72" label:"Password"`
	Role     string `json:"role" validate:"required,role" label:"Role"`
}

// HandleRegister creates a new account. Admin only; there is no open
// self-registration.
// POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if v := inputval.Validate(in); v.HasErrors() {
		respond.Error(w, http.StatusBadRequest, v.First())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "password hash failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			respond.Error(w, http.StatusConflict, "A user with this email already exists.")
			return
		}
		h.ErrLog.ServerError(w, r, err, "user create failed")
		return
	}

	h.Log.Info("user registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))

	respond.JSON(w, http.StatusCreated, user)
}
