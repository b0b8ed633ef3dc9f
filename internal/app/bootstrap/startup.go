// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It applies
// any timeout overrides from the environment and makes sure the configured
// bootstrap admin exists, so a fresh deployment has a way in.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied", zap.Int("count", n))
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg, logger); err != nil {
			return err
		}
	}

	return nil
}

// ensureAdmin creates the bootstrap admin account if no user with the
// configured email exists. An existing user keeps their role and password;
// the bootstrap never overwrites accounts.
func ensureAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	users := userstore.New(deps.StudyTrackMongoDatabase)

	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	existing, err := users.GetByEmail(ctx, appCfg.AdminEmail)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if existing != nil {
		logger.Info("bootstrap admin already exists",
			zap.String("email", existing.Email),
			zap.String("role", existing.Role))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(appCfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	created, err := users.Create(ctx, models.User{
		Name:         appCfg.AdminName,
		Email:        appCfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         authz.RoleAdmin,
	})
	if err != nil {
		// A concurrent replica may have created it between the lookup and
		// the insert; that is success, not failure.
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			logger.Info("bootstrap admin created concurrently", zap.String("email", appCfg.AdminEmail))
			return nil
		}
		return err
	}

	logger.Info("bootstrap admin created",
		zap.String("user_id", created.ID.Hex()),
		zap.String("email", created.Email))
	return nil
}
