// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authnfeature "github.com/dalemusser/studytrack/internal/app/features/authn"
	batchesfeature "github.com/dalemusser/studytrack/internal/app/features/batches"
	doubtsfeature "github.com/dalemusser/studytrack/internal/app/features/doubts"
	healthfeature "github.com/dalemusser/studytrack/internal/app/features/health"
	roadmapsfeature "github.com/dalemusser/studytrack/internal/app/features/roadmaps"
	submissionsfeature "github.com/dalemusser/studytrack/internal/app/features/submissions"
	suggestionsfeature "github.com/dalemusser/studytrack/internal/app/features/suggestions"
	tasksfeature "github.com/dalemusser/studytrack/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/studytrack/internal/app/features/users"
	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// StudyTrack initializes the bearer-token manager, wires the attachment
// storage backend, and mounts feature routers for every part of the API:
// auth, users, batches, roadmaps, tasks, submissions, doubts, and
// suggestions.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.TokenKey, appCfg.TokenIssuer, appCfg.TokenExpiry, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadBearerUser fetches fresh user data on
	// each request. Role and batch changes take effect without re-login, and
	// tokens for deleted users fail closed.
	tokens.SetUserFetcher(userstore.NewFetcher(deps.StudyTrackMongoDatabase))

	// Local attachment storage for submission uploads.
	fileStore, err := storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	// Error logger for handlers: 5xx responses get logged with request context.
	errLog := respond.NewErrorLogger(logger)

	db := deps.StudyTrackMongoDatabase

	r := chi.NewRouter()

	// Global auth middleware: loads the bearer user into context when an
	// Authorization header is present. Handlers read it via authz.UserCtx.
	r.Use(tokens.LoadBearerUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.StudyTrackMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication: register, login, profile
	authnHandler := authnfeature.NewHandler(db, tokens, logger, errLog)
	r.Mount("/auth", authnfeature.Routes(authnHandler))

	// User management and role dashboards
	usersHandler := usersfeature.NewHandler(db, logger, errLog)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Batch management and rosters
	batchesHandler := batchesfeature.NewHandler(db, logger, errLog)
	r.Mount("/batches", batchesfeature.Routes(batchesHandler))

	// Roadmaps and their tasks
	roadmapsHandler := roadmapsfeature.NewHandler(db, logger, errLog)
	r.Mount("/roadmaps", roadmapsfeature.Routes(roadmapsHandler))

	tasksHandler := tasksfeature.NewHandler(db, logger, errLog)
	r.Mount("/tasks", tasksfeature.Routes(tasksHandler))

	// Student submissions, tutor review, attachment downloads
	submissionsHandler := submissionsfeature.NewHandler(db, fileStore, logger, errLog)
	r.Mount("/submissions", submissionsfeature.Routes(submissionsHandler))

	// Doubts: student questions, tutor replies
	doubtsHandler := doubtsfeature.NewHandler(db, logger, errLog)
	r.Mount("/doubts", doubtsfeature.Routes(doubtsHandler))

	// Rule-based coaching suggestions for students
	suggestionsHandler := suggestionsfeature.NewHandler(db, logger, errLog)
	r.Mount("/suggestions", suggestionsfeature.Routes(suggestionsHandler))

	return r, nil
}
