// internal/app/features/batches/handler.go
package batches

import (
	batchstore "github.com/dalemusser/studytrack/internal/app/store/batches"
	"github.com/dalemusser/studytrack/internal/app/store/membership"
	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the batches feature.
// All roster and tutor changes go through the membership manager; the
// stores are used directly only for reads.
type Handler struct {
	DB         *mongo.Database
	Users      *userstore.Store
	Batches    *batchstore.Store
	Membership *membership.Manager
	Log        *zap.Logger
	ErrLog     *respond.ErrorLogger
}

// NewHandler constructs a batches Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, errLog *respond.ErrorLogger) *Handler {
	return &Handler{
		DB:         db,
		Users:      userstore.New(db),
		Batches:    batchstore.New(db),
		Membership: membership.NewManager(db, logger),
		Log:        logger,
		ErrLog:     errLog,
	}
}
