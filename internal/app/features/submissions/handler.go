// internal/app/features/submissions/handler.go
package submissions

import (
	batchstore "github.com/dalemusser/studytrack/internal/app/store/batches"
	submissionstore "github.com/dalemusser/studytrack/internal/app/store/submissions"
	taskstore "github.com/dalemusser/studytrack/internal/app/store/tasks"
	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the submissions
// feature. Storage holds uploaded attachments; reviews write both the
// submission and the student's star total.
type Handler struct {
	DB          *mongo.Database
	Submissions *submissionstore.Store
	Tasks       *taskstore.Store
	Batches     *batchstore.Store
	Users       *userstore.Store
	Storage     storage.Store
	Log         *zap.Logger
	ErrLog      *respond.ErrorLogger
}

// NewHandler constructs a submissions Handler.
func NewHandler(db *mongo.Database, store storage.Store, logger *zap.Logger, errLog *respond.ErrorLogger) *Handler {
	return &Handler{
		DB:          db,
		Submissions: submissionstore.New(db),
		Tasks:       taskstore.New(db),
		Batches:     batchstore.New(db),
		Users:       userstore.New(db),
		Storage:     store,
		Log:         logger,
		ErrLog:      errLog,
	}
}
