// internal/app/store/productions/productionstore.go
package productionstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/comicshelf/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("production not found")

// insertAttempts bounds retries when two creates race for the same order.
const insertAttempts = 5

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("marvel-productions")}
}

// nextOrder returns one past the highest order in use, or 1.
func (s *Store) nextOrder(ctx context.Context) (int, error) {
	var last struct {
		Order int `bson:"order"`
	}
	err := s.c.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}}).SetProjection(bson.M{"order": 1}),
	).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Order + 1, nil
}

// Create inserts p at the end of the watch order. The type defaults to
// "Film". The unique order index rejects a concurrent insert that picked
// the same order; Create then reads the maximum again.
func (s *Store) Create(ctx context.Context, p models.MarvelProduction) (models.MarvelProduction, error) {
	p.Title = strings.TrimSpace(p.Title)
	if strings.TrimSpace(p.Type) == "" {
		p.Type = models.DefaultProductionType
	}
	if p.WatchDates == nil {
		p.WatchDates = []time.Time{}
	}

	var err error
	for i := 0; i < insertAttempts; i++ {
		p.ID = primitive.NewObjectID()
		p.Order, err = s.nextOrder(ctx)
		if err != nil {
			return models.MarvelProduction{}, err
		}
		_, err = s.c.InsertOne(ctx, p)
		if err == nil {
			return p, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.MarvelProduction{}, err
		}
	}
	return models.MarvelProduction{}, err
}

// List returns every production in watch order.
func (s *Store) List(ctx context.Context) ([]models.MarvelProduction, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.MarvelProduction{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.MarvelProduction, error) {
	var p models.MarvelProduction
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.MarvelProduction{}, ErrNotFound
	}
	if err != nil {
		return models.MarvelProduction{}, err
	}
	return p, nil
}

// RecordWatch appends watched to watch_dates and replaces the review when
// non-empty. With neither supplied the production is returned unchanged.
func (s *Store) RecordWatch(ctx context.Context, id primitive.ObjectID, watched *time.Time, review string) (models.MarvelProduction, error) {
	update := bson.M{}
	if watched != nil {
		update["$push"] = bson.M{"watch_dates": *watched}
	}
	if review != "" {
		update["$set"] = bson.M{"review": review}
	}
	if len(update) == 0 {
		return s.GetByID(ctx, id)
	}

	var p models.MarvelProduction
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.MarvelProduction{}, ErrNotFound
	}
	if err != nil {
		return models.MarvelProduction{}, err
	}
	return p, nil
}
