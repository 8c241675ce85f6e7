// internal/app/features/books/handler.go
package books

import (
	"time"

	uierrors "github.com/dalemusser/comicshelf/internal/app/features/errors"
	artiststore "github.com/dalemusser/comicshelf/internal/app/store/artists"
	bookstore "github.com/dalemusser/comicshelf/internal/app/store/books"
	collectionstore "github.com/dalemusser/comicshelf/internal/app/store/collections"
	"github.com/dalemusser/comicshelf/internal/app/system/imagestore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the book catalog under /api/book.
type Handler struct {
	DB      *mongo.Database
	Books   *bookstore.Store
	Artists *artiststore.Store
	Entries *collectionstore.Store
	Images  *imagestore.Store // nil disables cover uploads
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger

	// Now is the clock used for "current month" computations.
	Now func() time.Time
}

func NewHandler(db *mongo.Database, images *imagestore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Books:   bookstore.New(db),
		Artists: artiststore.New(db),
		Entries: collectionstore.New(db),
		Images:  images,
		Log:     logger,
		ErrLog:  errLog,
		Now:     time.Now,
	}
}
