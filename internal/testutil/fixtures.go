package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Calling it repeatedly on the same request accumulates parameters.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// IntPtr and FloatPtr help build optional numeric fields.
func IntPtr(i int) *int { return &i }

func FloatPtr(v float64) *float64 { return &v }

// TimePtr returns a pointer to a UTC date at midnight.
func TimePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// CreateArtist inserts an artist with the given roles.
func (f *Fixtures) CreateArtist(ctx context.Context, nom string, auteur, dessinateur bool) models.Artist {
	f.t.Helper()

	a := models.Artist{
		ID:          primitive.NewObjectID(),
		Nom:         nom,
		Auteur:      auteur,
		Dessinateur: dessinateur,
		Books:       []primitive.ObjectID{},
	}
	if _, err := f.db.Collection("artists").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test artist: %v", err)
	}
	return a
}

// CreateBook inserts b, filling the id, folded fields, default type and
// empty artist lists. Artists listed on b get the book id pushed onto their
// books array so both sides stay consistent.
func (f *Fixtures) CreateBook(ctx context.Context, b models.Book) models.Book {
	f.t.Helper()

	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.Type == "" {
		b.Type = models.DefaultBookType
	}
	if b.Editeur == "" {
		b.Editeur = "Test Editions"
	}
	b.TitreCI = text.Fold(b.Titre)
	b.SerieCI = text.Fold(b.Serie)
	if b.Auteurs == nil {
		b.Auteurs = []primitive.ObjectID{}
	}
	if b.Dessinateurs == nil {
		b.Dessinateurs = []primitive.ObjectID{}
	}

	if _, err := f.db.Collection("books").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test book: %v", err)
	}

	linked := append(append([]primitive.ObjectID{}, b.Auteurs...), b.Dessinateurs...)
	if len(linked) > 0 {
		_, err := f.db.Collection("artists").UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": linked}},
			bson.M{"$addToSet": bson.M{"books": b.ID}})
		if err != nil {
			f.t.Fatalf("failed to link test book to artists: %v", err)
		}
	}
	return b
}

// CreateEntry inserts a collection entry for (owner, book).
func (f *Fixtures) CreateEntry(ctx context.Context, e models.CollectionEntry) models.CollectionEntry {
	f.t.Helper()

	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.ReadDates == nil {
		e.ReadDates = []time.Time{}
	}
	if _, err := f.db.Collection("collections").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test collection entry: %v", err)
	}
	return e
}

// CreateProduction inserts a Marvel production with the given order.
func (f *Fixtures) CreateProduction(ctx context.Context, title string, order int) models.MarvelProduction {
	f.t.Helper()

	p := models.MarvelProduction{
		ID:         primitive.NewObjectID(),
		Title:      title,
		Poster:     "/posters/" + title + ".jpg",
		Length:     120,
		Type:       models.DefaultProductionType,
		Order:      order,
		WatchDates: []time.Time{},
	}
	if _, err := f.db.Collection("marvel-productions").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test production: %v", err)
	}
	return p
}
