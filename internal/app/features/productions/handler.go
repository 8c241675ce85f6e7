// internal/app/features/productions/handler.go
package productions

import (
	uierrors "github.com/dalemusser/comicshelf/internal/app/features/errors"
	productionstore "github.com/dalemusser/comicshelf/internal/app/store/productions"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the Marvel watch tracker under /api/marvel-productions.
type Handler struct {
	Productions *productionstore.Store
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Productions: productionstore.New(db),
		Log:         logger,
		ErrLog:      errLog,
	}
}
