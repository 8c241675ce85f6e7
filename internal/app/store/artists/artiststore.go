// internal/app/store/artists/artiststore.go
package artiststore

import (
	"context"
	"errors"
	"regexp"

	"github.com/dalemusser/comicshelf/internal/app/system/metrics"
	"github.com/dalemusser/comicshelf/internal/app/system/normalize"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when an artist id has no document.
var ErrNotFound = errors.New("artist not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("artists")}
}

// Resolve maps author and illustrator names to persisted artists, creating
// the missing ones. Names are cleaned with normalize.Names, so each list
// comes back deduplicated in first-seen order. Matching on nom is exact and
// case-sensitive. A name present in both lists becomes one artist with both
// roles; an existing artist resolved in a role it did not hold gains that
// role.
//
// Run Resolve inside the transaction that writes the book so that a failed
// book write leaves no new artists behind.
func (s *Store) Resolve(ctx context.Context, auteurs, dessinateurs []string) (authors, illustrators []models.Artist, err error) {
	auteurs = normalize.Names(auteurs)
	dessinateurs = normalize.Names(dessinateurs)
	all := normalize.Names(append(append([]string{}, auteurs...), dessinateurs...))
	if len(all) == 0 {
		return []models.Artist{}, []models.Artist{}, nil
	}

	byName := make(map[string]*models.Artist, len(all))
	cur, err := s.c.Find(ctx, bson.M{"nom": bson.M{"$in": all}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, nil, err
	}
	var found []models.Artist
	if err := cur.All(ctx, &found); err != nil {
		return nil, nil, err
	}
	for i := range found {
		// oldest wins when the same nom was stored twice
		if _, ok := byName[found[i].Nom]; !ok {
			byName[found[i].Nom] = &found[i]
		}
	}

	isAuteur := setOf(auteurs)
	isDessinateur := setOf(dessinateurs)

	var created []interface{}
	var gainAuteur, gainDessinateur []primitive.ObjectID
	for _, nom := range all {
		a, ok := byName[nom]
		if !ok {
			a = &models.Artist{
				ID:          primitive.NewObjectID(),
				Nom:         nom,
				Auteur:      isAuteur[nom],
				Dessinateur: isDessinateur[nom],
				Books:       []primitive.ObjectID{},
			}
			byName[nom] = a
			created = append(created, a)
			continue
		}
		if isAuteur[nom] && !a.Auteur {
			a.Auteur = true
			gainAuteur = append(gainAuteur, a.ID)
		}
		if isDessinateur[nom] && !a.Dessinateur {
			a.Dessinateur = true
			gainDessinateur = append(gainDessinateur, a.ID)
		}
	}

	if len(created) > 0 {
		if _, err := s.c.InsertMany(ctx, created); err != nil {
			return nil, nil, err
		}
		metrics.ArtistsCreated.Add(float64(len(created)))
	}
	if err := s.setRole(ctx, gainAuteur, "auteur"); err != nil {
		return nil, nil, err
	}
	if err := s.setRole(ctx, gainDessinateur, "dessinateur"); err != nil {
		return nil, nil, err
	}

	authors = make([]models.Artist, 0, len(auteurs))
	for _, nom := range auteurs {
		authors = append(authors, *byName[nom])
	}
	illustrators = make([]models.Artist, 0, len(dessinateurs))
	for _, nom := range dessinateurs {
		illustrators = append(illustrators, *byName[nom])
	}
	return authors, illustrators, nil
}

func (s *Store) setRole(ctx context.Context, ids []primitive.ObjectID, field string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": bson.M{field: true}})
	return err
}

func setOf(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// IDs returns the ids of artists in order.
func IDs(artists []models.Artist) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(artists))
	for _, a := range artists {
		out = append(out, a.ID)
	}
	return out
}

// Link adds bookID to the books array of every artist in ids.
func (s *Store) Link(ctx context.Context, bookID primitive.ObjectID, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$addToSet": bson.M{"books": bookID}})
	return err
}

// Unlink pulls bookID from the books array of every artist in ids.
func (s *Store) Unlink(ctx context.Context, bookID primitive.ObjectID, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$pull": bson.M{"books": bookID}})
	return err
}

// UnlinkAll pulls bookID from every artist that references it.
func (s *Store) UnlinkAll(ctx context.Context, bookID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"books": bookID},
		bson.M{"$pull": bson.M{"books": bookID}})
	return err
}

// GetByID returns one artist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Artist, error) {
	var a models.Artist
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Artist{}, ErrNotFound
		}
		return models.Artist{}, err
	}
	return a, nil
}

// GetByIDs returns the artists for ids in the order of ids. Unknown ids are
// skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Artist, error) {
	if len(ids) == 0 {
		return []models.Artist{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var found []models.Artist
	if err := cur.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Artist, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	out := make([]models.Artist, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// DistinctNames returns every artist name.
func (s *Store) DistinctNames(ctx context.Context) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "nom", bson.M{"nom": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if n, ok := v.(string); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// Search returns artists whose nom contains q, case-insensitively.
func (s *Store) Search(ctx context.Context, q string) ([]models.Artist, error) {
	q = normalize.Query(q)
	if q == "" {
		return []models.Artist{}, nil
	}
	filter := bson.M{"nom": primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "nom", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Artist{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
