// internal/app/features/roadmaps/handler.go
package roadmaps

import (
	batchstore "github.com/dalemusser/studytrack/internal/app/store/batches"
	roadmapstore "github.com/dalemusser/studytrack/internal/app/store/roadmaps"
	taskstore "github.com/dalemusser/studytrack/internal/app/store/tasks"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the roadmaps feature.
type Handler struct {
	DB       *mongo.Database
	Roadmaps *roadmapstore.Store
	Tasks    *taskstore.Store
	Batches  *batchstore.Store
	Log      *zap.Logger
	ErrLog   *respond.ErrorLogger
}

// NewHandler constructs a roadmaps Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, errLog *respond.ErrorLogger) *Handler {
	return &Handler{
		DB:       db,
		Roadmaps: roadmapstore.New(db),
		Tasks:    taskstore.New(db),
		Batches:  batchstore.New(db),
		Log:      logger,
		ErrLog:   errLog,
	}
}
