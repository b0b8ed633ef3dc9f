// internal/app/features/users/handler.go
package users

import (
	batchstore "github.com/dalemusser/studytrack/internal/app/store/batches"
	"github.com/dalemusser/studytrack/internal/app/store/membership"
	roadmapstore "github.com/dalemusser/studytrack/internal/app/store/roadmaps"
	submissionstore "github.com/dalemusser/studytrack/internal/app/store/submissions"
	taskstore "github.com/dalemusser/studytrack/internal/app/store/tasks"
	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the users feature:
// role listings, admin updates and deletes, and the dashboards.
type Handler struct {
	DB          *mongo.Database
	Users       *userstore.Store
	Batches     *batchstore.Store
	Roadmaps    *roadmapstore.Store
	Submissions *submissionstore.Store
	Tasks       *taskstore.Store
	Membership  *membership.Manager
	Log         *zap.Logger
	ErrLog      *respond.ErrorLogger
}

// NewHandler constructs a users Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, errLog *respond.ErrorLogger) *Handler {
	return &Handler{
		DB:          db,
		Users:       userstore.New(db),
		Batches:     batchstore.New(db),
		Roadmaps:    roadmapstore.New(db),
		Submissions: submissionstore.New(db),
		Tasks:       taskstore.New(db),
		Membership:  membership.NewManager(db, logger),
		Log:         logger,
		ErrLog:      errLog,
	}
}
