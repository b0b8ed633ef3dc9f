// internal/app/features/authn/handler.go
package authn

import (
	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the authn feature:
// login, registration, and the current-user profile.
type Handler struct {
	DB     *mongo.Database
	Users  *userstore.Store
	Tokens *auth.TokenManager
	Log    *zap.Logger
	ErrLog *respond.ErrorLogger
}

// NewHandler constructs an authn Handler. It is typically called from
// the bootstrap BuildHandler function.
func NewHandler(db *mongo.Database, tokens *auth.TokenManager, logger *zap.Logger, errLog *respond.ErrorLogger) *Handler {
	return &Handler{
		DB:     db,
		Users:  userstore.New(db),
		Tokens: tokens,
		Log:    logger,
		ErrLog: errLog,
	}
}
