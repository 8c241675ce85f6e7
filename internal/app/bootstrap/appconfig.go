// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers the HTTP listener, logging and TLS. Everything
// the comic shelf API needs beyond that lives here and is passed to every
// lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token verification. Tokens are issued by the account service.
	JWTSecret string
	JWTIssuer string // blank disables the issuer check

	// Cover image uploads
	UploadDir   string // directory on disk
	UploadURL   string // URL prefix the directory is served under
	MaxUploadMB int

	// Orphaned cover cleanup; a zero interval disables the worker.
	CoverSweepInterval time.Duration
	CoverSweepGrace    time.Duration

	CORSAllowedOrigins []string

	// Per-IP limit on mutating routes
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Handler timeouts for database work
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (c AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
