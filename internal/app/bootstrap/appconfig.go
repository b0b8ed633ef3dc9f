// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig is where everything specific to StudyTrack lives: the MongoDB
// connection, bearer-token signing, attachment storage, and the
// bootstrap-admin account created on first startup.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Bearer-token configuration
	TokenKey    string        // Secret key for signing JWTs (must be strong in production)
	TokenIssuer string        // Issuer claim on issued tokens
	TokenExpiry time.Duration // Lifetime of issued tokens

	// Submission attachment storage
	StorageLocalPath string // Local storage path (e.g., "./uploads/submissions")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files/submissions")

	// Bootstrap admin: created (or left alone if present) on startup so a
	// fresh deployment has a way in. Blank email disables the bootstrap.
	AdminName     string // Display name for the bootstrap admin
	AdminEmail    string // Email of the bootstrap admin account
	AdminPassword string // Initial password for the bootstrap admin
}
