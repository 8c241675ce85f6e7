// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"

	booksfeature "github.com/dalemusser/comicshelf/internal/app/features/books"
	collectionfeature "github.com/dalemusser/comicshelf/internal/app/features/collection"
	errorsfeature "github.com/dalemusser/comicshelf/internal/app/features/errors"
	healthfeature "github.com/dalemusser/comicshelf/internal/app/features/health"
	productionsfeature "github.com/dalemusser/comicshelf/internal/app/features/productions"
	statusfeature "github.com/dalemusser/comicshelf/internal/app/features/status"
	"github.com/dalemusser/comicshelf/internal/app/system/auth"
	"github.com/dalemusser/comicshelf/internal/app/system/imagestore"
	"github.com/dalemusser/comicshelf/internal/app/system/metrics"
	"github.com/dalemusser/comicshelf/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the comic shelf API.
//
// Reads are public. Writes go through the guard chain: a signed-in user
// (verified bearer token) and a per-IP rate limit.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	uploadURL := strings.TrimRight(appCfg.UploadURL, "/")
	images, err := imagestore.New(appCfg.UploadDir, uploadURL, appCfg.MaxUploadBytes(), logger)
	if err != nil {
		logger.Error("image store init failed", zap.Error(err))
		return nil, err
	}

	startCoverSweep(appCfg, db, images, logger)

	tokens := auth.NewTokenService(appCfg.JWTSecret, appCfg.JWTIssuer)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(reqlog.Middleware(logger))
	r.Use(metrics.Middleware)
	r.Use(errLog.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: appCfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		MaxAge:         300,
	}))
	// Loads the bearer-token user into context when present.
	r.Use(auth.LoadUser(tokens, logger))

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	guard := []func(http.Handler) http.Handler{
		auth.RequireSignedIn,
		httprate.Limit(appCfg.RateLimitRequests, appCfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(errorsfeature.RenderTooManyRequests),
		),
	}

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	statusHandler := statusfeature.NewHandler(db, logger)
	r.Mount("/status", statusfeature.Routes(statusHandler))

	// Uploaded cover images
	r.Handle(uploadURL+"/*", fileserver.Handler(uploadURL, appCfg.UploadDir))

	booksHandler := booksfeature.NewHandler(db, images, errLog, logger)
	r.Mount("/api/book", booksfeature.Routes(booksHandler, guard...))

	collectionHandler := collectionfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/collection", collectionfeature.Routes(collectionHandler, guard...))

	productionsHandler := productionsfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/marvel-productions", productionsfeature.Routes(productionsHandler, guard...))

	return r, nil
}
