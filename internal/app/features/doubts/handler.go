// internal/app/features/doubts/handler.go
package doubts

import (
	batchstore "github.com/dalemusser/studytrack/internal/app/store/batches"
	doubtstore "github.com/dalemusser/studytrack/internal/app/store/doubts"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the doubts feature.
type Handler struct {
	DB      *mongo.Database
	Doubts  *doubtstore.Store
	Batches *batchstore.Store
	Log     *zap.Logger
	ErrLog  *respond.ErrorLogger
}

// NewHandler constructs a doubts Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, errLog *respond.ErrorLogger) *Handler {
	return &Handler{
		DB:      db,
		Doubts:  doubtstore.New(db),
		Batches: batchstore.New(db),
		Log:     logger,
		ErrLog:  errLog,
	}
}
