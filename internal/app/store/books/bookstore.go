// internal/app/store/books/bookstore.go
package bookstore

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/comicshelf/internal/app/system/normalize"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a book id has no document.
var ErrNotFound = errors.New("book not found")

// SummaryProjection is the field set used by list views.
var SummaryProjection = bson.M{
	"_id": 1, "serie": 1, "titre": 1, "editeur": 1, "tome": 1, "prix": 1,
	"image": 1, "format": 1, "type": 1, "version": 1, "date_parution": 1,
}

// ReleaseProjection is the field set of the upcoming-releases view.
var ReleaseProjection = bson.M{
	"_id": 1, "date_parution": 1, "titre": 1, "serie": 1, "tome": 1, "image": 1, "version": 1,
}

// SeriesRef identifies one multi-volume work.
type SeriesRef struct {
	Serie   string `bson:"serie" json:"serie"`
	Version *int   `bson:"version,omitempty" json:"version,omitempty"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("books")}
}

// prepare fills derived fields and defaults before a write.
func prepare(b *models.Book) {
	b.Titre = strings.TrimSpace(b.Titre)
	b.Serie = strings.TrimSpace(b.Serie)
	b.Editeur = strings.TrimSpace(b.Editeur)
	b.TitreCI = text.Fold(b.Titre)
	b.SerieCI = text.Fold(b.Serie)
	if strings.TrimSpace(b.Type) == "" {
		b.Type = models.DefaultBookType
	}
	if b.Auteurs == nil {
		b.Auteurs = []primitive.ObjectID{}
	}
	if b.Dessinateurs == nil {
		b.Dessinateurs = []primitive.ObjectID{}
	}
}

// Create inserts b with a new id, setting folded fields and the default type.
func (s *Store) Create(ctx context.Context, b models.Book) (models.Book, error) {
	b.ID = primitive.NewObjectID()
	prepare(&b)
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Book{}, err
	}
	return b, nil
}

// Replace overwrites every field of the book with b. Fields left empty in b
// are cleared.
func (s *Store) Replace(ctx context.Context, b models.Book) (models.Book, error) {
	prepare(&b)
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return models.Book{}, err
	}
	if res.MatchedCount == 0 {
		return models.Book{}, ErrNotFound
	}
	return b, nil
}

// GetByID returns a book by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Book, error) {
	var b models.Book
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Book{}, ErrNotFound
		}
		return models.Book{}, err
	}
	return b, nil
}

// GetByIDs returns the books for ids keyed by id.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Book, error) {
	out := make(map[primitive.ObjectID]models.Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	books, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		out[b.ID] = b
	}
	return out, nil
}

// Delete removes a book. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Book, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Book{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every book with the summary projection, sorted by title.
func (s *Store) List(ctx context.Context) ([]models.Book, error) {
	return s.Find(ctx, bson.M{})
}

// Find returns the books matching filter with the summary projection,
// sorted by title.
func (s *Store) Find(ctx context.Context, filter bson.M) ([]models.Book, error) {
	return s.find(ctx, filter, options.Find().
		SetProjection(SummaryProjection).
		SetSort(bson.D{{Key: "titre_ci", Value: 1}, {Key: "_id", Value: 1}}))
}

// FutureReleases returns books released on or after from, earliest first.
func (s *Store) FutureReleases(ctx context.Context, from time.Time) ([]models.Book, error) {
	return s.find(ctx, bson.M{"date_parution": bson.M{"$gte": from}}, options.Find().
		SetProjection(ReleaseProjection).
		SetSort(bson.D{{Key: "date_parution", Value: 1}, {Key: "_id", Value: 1}}))
}

// OtherVolumes returns the books sharing b's serie and version, without b.
// One-shots (no serie) have no other volumes.
func (s *Store) OtherVolumes(ctx context.Context, b models.Book) ([]models.Book, error) {
	if b.Serie == "" {
		return []models.Book{}, nil
	}
	filter := bson.M{"serie": b.Serie, "_id": bson.M{"$ne": b.ID}}
	if b.Version != nil {
		filter["version"] = *b.Version
	} else {
		filter["version"] = nil // matches missing or null
	}
	return s.find(ctx, filter, options.Find().SetProjection(SummaryProjection))
}

// ByArtist returns every book crediting artistID as author or illustrator.
func (s *Store) ByArtist(ctx context.Context, artistID primitive.ObjectID) ([]models.Book, error) {
	return s.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"auteurs": artistID},
		bson.M{"dessinateurs": artistID},
	}})
}

// ByType returns every book of one navigation type with the artist refs.
func (s *Store) ByType(ctx context.Context, bookType string) ([]models.Book, error) {
	proj := bson.M{"auteurs": 1, "dessinateurs": 1, "genre": 1}
	for k, v := range SummaryProjection {
		proj[k] = v
	}
	return s.find(ctx, bson.M{"type": bookType}, options.Find().
		SetProjection(proj).
		SetSort(bson.D{{Key: "titre_ci", Value: 1}}))
}

// Sample returns up to n books of bookType picked by $sample.
func (s *Store) Sample(ctx context.Context, bookType string, n int) ([]models.Book, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"type": bookType}}},
		{{Key: "$sample", Value: bson.M{"size": n}}},
		{{Key: "$project", Value: SummaryProjection}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := []models.Book{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Distinct returns the non-empty distinct string values of field across
// books matching filter (nil for all books), sorted.
func (s *Store) Distinct(ctx context.Context, field string, filter bson.M) ([]string, error) {
	f := bson.M{field: bson.M{"$nin": bson.A{nil, ""}}}
	for k, v := range filter {
		f[k] = v
	}
	vals, err := s.c.Distinct(ctx, field, f)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if str, ok := v.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	slices.Sort(out)
	return out, nil
}

// ContainsFilter matches books whose title or series contains q, ignoring
// case and diacritics.
func ContainsFilter(q string) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(q))}
	return bson.M{"$or": bson.A{
		bson.M{"titre_ci": re},
		bson.M{"serie_ci": re},
	}}
}

// Search returns books whose title or series contains q.
func (s *Store) Search(ctx context.Context, q string) ([]models.Book, error) {
	q = normalize.Query(q)
	if q == "" {
		return []models.Book{}, nil
	}
	return s.Find(ctx, ContainsFilter(q))
}

// SearchSeries returns the distinct (serie, version) pairs whose serie
// contains q, sorted by serie then version.
func (s *Store) SearchSeries(ctx context.Context, q string) ([]SeriesRef, error) {
	q = normalize.Query(q)
	if q == "" {
		return []SeriesRef{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"serie_ci": primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(q))},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"serie": "$serie", "version": "$version"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":     0,
			"serie":   "$_id.serie",
			"version": "$_id.version",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "serie", Value: 1}, {Key: "version", Value: 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := []SeriesRef{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
