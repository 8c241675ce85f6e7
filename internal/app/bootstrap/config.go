// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/comicshelf/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the comic shelf API.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: COMICSHELF_MONGO_URI, COMICSHELF_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "comicshelf", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Auth
	{Name: "jwt_secret", Default: "", Desc: "HS256 secret used to verify bearer tokens (required)"},
	{Name: "jwt_issuer", Default: "", Desc: "Expected token issuer (blank accepts any)"},

	// Uploads
	{Name: "upload_dir", Default: "./uploads/images", Desc: "Directory for uploaded cover images"},
	{Name: "upload_url", Default: "/uploads/images", Desc: "URL prefix for serving cover images"},
	{Name: "max_upload_mb", Default: 5, Desc: "Maximum cover image size in megabytes"},
	{Name: "cover_sweep_interval", Default: "1h", Desc: "How often to delete unreferenced cover images (0 disables)"},
	{Name: "cover_sweep_grace", Default: "24h", Desc: "Minimum age of a cover image before it may be swept"},

	// HTTP
	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated list of allowed CORS origins"},
	{Name: "rate_limit_requests", Default: 60, Desc: "Mutating requests allowed per IP per window"},
	{Name: "rate_limit_window", Default: "1m", Desc: "Rate limit window (e.g., 1m, 30s)"},

	// Database timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list views and simple writes"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for transactional writes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env > files > defaults; app env vars use the COMICSHELF_ prefix.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COMICSHELF", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		UploadDir:   appValues.String("upload_dir"),
		UploadURL:   appValues.String("upload_url"),
		MaxUploadMB: appValues.Int("max_upload_mb"),

		CoverSweepInterval: appValues.Duration("cover_sweep_interval", time.Hour),
		CoverSweepGrace:    appValues.Duration("cover_sweep_grace", 24*time.Hour),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
		RateLimitRequests:  appValues.Int("rate_limit_requests"),
		RateLimitWindow:    appValues.Duration("rate_limit_window", time.Minute),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	return coreCfg, appCfg, nil
}

// splitList parses a comma-separated config value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI format is checked before connecting, and a JWT secret
// is required since every mutating route depends on it.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return errors.New("mongo_database is required")
	}
	if strings.TrimSpace(appCfg.JWTSecret) == "" {
		return errors.New("jwt_secret is required")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if appCfg.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", appCfg.MaxUploadMB)
	}
	if appCfg.RateLimitRequests <= 0 || appCfg.RateLimitWindow <= 0 {
		return errors.New("rate_limit_requests and rate_limit_window must be positive")
	}
	return nil
}
