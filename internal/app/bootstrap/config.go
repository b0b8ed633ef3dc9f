// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StudyTrack.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_key, etc.
//   - Environment variables: STUDYTRACK_MONGO_URI, STUDYTRACK_TOKEN_KEY, etc.
//   - Command-line flags: --mongo_uri, --token_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studytrack", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer-token configuration
	{Name: "token_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "JWT signing key (must be strong in production)"},
	{Name: "token_issuer", Default: "studytrack", Desc: "Issuer claim on issued tokens"},
	{Name: "token_expiry", Default: "720h", Desc: "Lifetime of issued tokens (e.g., 720h, 24h)"},

	// Submission attachment storage
	{Name: "storage_local_path", Default: "./uploads/submissions", Desc: "Local storage path for submission attachments"},
	{Name: "storage_local_url", Default: "/files/submissions", Desc: "URL prefix for serving local files"},

	// Bootstrap admin (created on startup if missing; blank email disables)
	{Name: "admin_name", Default: "Administrator", Desc: "Display name for the bootstrap admin"},
	{Name: "admin_email", Default: "", Desc: "Email of the bootstrap admin account"},
	{Name: "admin_password", Default: "", Desc: "Initial password for the bootstrap admin"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STUDYTRACK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYTRACK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Bearer tokens
		TokenKey:    appValues.String("token_key"),
		TokenIssuer: appValues.String("token_issuer"),
		TokenExpiry: appValues.Duration("token_expiry", 720*time.Hour),

		// Attachment storage
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// Bootstrap admin
		AdminName:     appValues.String("admin_name"),
		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// StudyTrack validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses to start in
// production with the development token key.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && appCfg.TokenKey == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("token_key must be set to a strong value in production")
	}

	if appCfg.TokenExpiry <= 0 {
		return fmt.Errorf("token_expiry must be a positive duration")
	}

	// An admin email without a password (or vice versa) is a half-configured
	// bootstrap; catch it here instead of failing silently at startup.
	if (appCfg.AdminEmail == "") != (appCfg.AdminPassword == "") {
		return fmt.Errorf("admin_email and admin_password must be set together")
	}

	return nil
}
