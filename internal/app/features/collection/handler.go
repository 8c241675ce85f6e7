// internal/app/features/collection/handler.go
package collection

import (
	"time"

	uierrors "github.com/dalemusser/comicshelf/internal/app/features/errors"
	artiststore "github.com/dalemusser/comicshelf/internal/app/store/artists"
	bookstore "github.com/dalemusser/comicshelf/internal/app/store/books"
	collectionstore "github.com/dalemusser/comicshelf/internal/app/store/collections"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a user's collection under /api/collection.
type Handler struct {
	DB      *mongo.Database
	Entries *collectionstore.Store
	Books   *bookstore.Store
	Artists *artiststore.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Now     func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Entries: collectionstore.New(db),
		Books:   bookstore.New(db),
		Artists: artiststore.New(db),
		Log:     logger,
		ErrLog:  errLog,
		Now:     time.Now,
	}
}
