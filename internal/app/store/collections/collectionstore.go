// internal/app/store/collections/collectionstore.go
package collectionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/comicshelf/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no matching entry exists.
var ErrNotFound = errors.New("collection entry not found")

// Facet selects which of a user's entries a list view reads.
type Facet int

const (
	FacetAll Facet = iota
	FacetOwned
	FacetWishlisted
	FacetRead
	FacetOwnedOrWishlisted
)

func (f Facet) filter(owner primitive.ObjectID) bson.M {
	m := bson.M{"owner": owner}
	switch f {
	case FacetOwned:
		m["possede"] = true
	case FacetWishlisted:
		m["souhaite"] = true
	case FacetRead:
		m["lu"] = true
	case FacetOwnedOrWishlisted:
		m["$or"] = bson.A{bson.M{"possede": true}, bson.M{"souhaite": true}}
	}
	return m
}

// Patch carries the optional fields of an entry edit. Nil means "leave
// unchanged".
type Patch struct {
	Lu       *bool
	Lien     *string
	Review   *string
	Note     *float64
	ReadDate *time.Time
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("collections")}
}

// defaults are written on insert for every field the update does not touch.
var defaults = bson.M{
	"possede":    false,
	"souhaite":   false,
	"lu":         false,
	"critique":   false,
	"read_dates": bson.A{},
}

func setOnInsert(touched ...bson.M) bson.M {
	out := bson.M{}
	for k, v := range defaults {
		skip := false
		for _, t := range touched {
			if _, ok := t[k]; ok {
				skip = true
				break
			}
		}
		if !skip {
			out[k] = v
		}
	}
	return out
}

// upsert applies update to the (owner, book) entry, creating it first when
// absent, and returns the entry after the update. The unique
// (owner, book) index turns a concurrent double insert into a duplicate key
// error, so the loser retries as a plain update.
func (s *Store) upsert(ctx context.Context, owner, book primitive.ObjectID, update bson.M) (models.CollectionEntry, error) {
	filter := bson.M{"owner": owner, "book": book}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var e models.CollectionEntry
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&e)
	if err != nil && wafflemongo.IsDup(err) {
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&e)
	}
	if err != nil {
		return models.CollectionEntry{}, err
	}
	return e, nil
}

// FindOrCreate returns the (owner, book) entry, creating an empty one when
// none exists.
func (s *Store) FindOrCreate(ctx context.Context, owner, book primitive.ObjectID) (models.CollectionEntry, error) {
	return s.upsert(ctx, owner, book, bson.M{"$setOnInsert": setOnInsert()})
}

// MarkOwned sets possede and clears souhaite. dateAchat is recorded when
// supplied.
func (s *Store) MarkOwned(ctx context.Context, owner, book primitive.ObjectID, dateAchat *time.Time) (models.CollectionEntry, error) {
	set := bson.M{"possede": true, "souhaite": false}
	if dateAchat != nil {
		set["date_achat"] = *dateAchat
	}
	return s.upsert(ctx, owner, book, bson.M{
		"$set":         set,
		"$setOnInsert": setOnInsert(set),
	})
}

// MarkWishlisted sets souhaite unless the book is already owned, in which
// case the entry is returned unchanged.
func (s *Store) MarkWishlisted(ctx context.Context, owner, book primitive.ObjectID) (models.CollectionEntry, error) {
	e, err := s.FindOrCreate(ctx, owner, book)
	if err != nil {
		return models.CollectionEntry{}, err
	}
	if e.Possede || e.Souhaite {
		return e, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.CollectionEntry
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": e.ID, "possede": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"souhaite": true}},
		opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// owned in the meantime
		return s.Get(ctx, owner, book)
	}
	if err != nil {
		return models.CollectionEntry{}, err
	}
	return out, nil
}

// Apply performs a partial update of the (owner, book) entry, creating it
// when absent. A read date is appended to read_dates; lu=true without a
// read date appends now. A review or link also sets critique.
func (s *Store) Apply(ctx context.Context, owner, book primitive.ObjectID, p Patch, now time.Time) (models.CollectionEntry, error) {
	set := bson.M{}
	push := bson.M{}

	if p.Lu != nil {
		set["lu"] = *p.Lu
	}
	switch {
	case p.ReadDate != nil:
		set["lu"] = true
		push["read_dates"] = *p.ReadDate
	case p.Lu != nil && *p.Lu:
		push["read_dates"] = now
	}
	if p.Lien != nil {
		set["lien"] = *p.Lien
	}
	if p.Review != nil {
		set["review"] = *p.Review
	}
	if (p.Lien != nil && *p.Lien != "") || (p.Review != nil && *p.Review != "") {
		set["critique"] = true
	}
	if p.Note != nil {
		set["note"] = *p.Note
	}

	update := bson.M{"$setOnInsert": setOnInsert(set, push)}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(push) > 0 {
		update["$push"] = push
	}
	return s.upsert(ctx, owner, book, update)
}

// RemoveFromWishlist clears souhaite on the (owner, book) entry. An entry
// that is neither read nor owned is deleted instead so nothing lingers.
// Returns deleted=true when the entry was removed, ErrNotFound when the
// book was not wishlisted.
func (s *Store) RemoveFromWishlist(ctx context.Context, owner, book primitive.ObjectID) (deleted bool, err error) {
	var e models.CollectionEntry
	err = s.c.FindOne(ctx, bson.M{"owner": owner, "book": book, "souhaite": true}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}

	if !e.Lu && !e.Possede {
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": e.ID, "lu": bson.M{"$ne": true}, "possede": bson.M{"$ne": true}})
		if err != nil {
			return false, err
		}
		if res.DeletedCount == 1 {
			return true, nil
		}
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": e.ID}, bson.M{"$set": bson.M{"souhaite": false}})
	return false, err
}

// Get returns the (owner, book) entry or ErrNotFound.
func (s *Store) Get(ctx context.Context, owner, book primitive.ObjectID) (models.CollectionEntry, error) {
	var e models.CollectionEntry
	err := s.c.FindOne(ctx, bson.M{"owner": owner, "book": book}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CollectionEntry{}, ErrNotFound
	}
	if err != nil {
		return models.CollectionEntry{}, err
	}
	return e, nil
}

// ByOwner returns the owner's entries restricted to facet, oldest first.
func (s *Store) ByOwner(ctx context.Context, owner primitive.ObjectID, facet Facet) ([]models.CollectionEntry, error) {
	cur, err := s.c.Find(ctx, facet.filter(owner), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.CollectionEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MapByBook returns the owner's entries keyed by book id.
func (s *Store) MapByBook(ctx context.Context, owner primitive.ObjectID) (map[primitive.ObjectID]models.CollectionEntry, error) {
	entries, err := s.ByOwner(ctx, owner, FacetAll)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.CollectionEntry, len(entries))
	for _, e := range entries {
		out[e.Book] = e
	}
	return out, nil
}

// DeleteByBook removes every entry referencing book.
func (s *Store) DeleteByBook(ctx context.Context, book primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"book": book})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
