// internal/app/features/tasks/handler.go
package tasks

import (
	roadmapstore "github.com/dalemusser/studytrack/internal/app/store/roadmaps"
	taskstore "github.com/dalemusser/studytrack/internal/app/store/tasks"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the tasks feature.
type Handler struct {
	DB       *mongo.Database
	Tasks    *taskstore.Store
	Roadmaps *roadmapstore.Store
	Log      *zap.Logger
	ErrLog   *respond.ErrorLogger
}

// NewHandler constructs a tasks Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, errLog *respond.ErrorLogger) *Handler {
	return &Handler{
		DB:       db,
		Tasks:    taskstore.New(db),
		Roadmaps: roadmapstore.New(db),
		Log:      logger,
		ErrLog:   errLog,
	}
}
