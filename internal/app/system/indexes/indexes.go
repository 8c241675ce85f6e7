// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureBooks(ctx, db); err != nil {
		problems = append(problems, "books: "+err.Error())
	}
	if err := ensureArtists(ctx, db); err != nil {
		problems = append(problems, "artists: "+err.Error())
	}
	if err := ensureCollections(ctx, db); err != nil {
		problems = append(problems, "collections: "+err.Error())
	}
	if err := ensureProductions(ctx, db); err != nil {
		problems = append(problems, "marvel-productions: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{} // sig -> index
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates missing indexes and realigns ones whose name or
// uniqueness drifted. Indexes not listed in models are left alone.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			sameName := desiredName == "" || ex.Name == desiredName
			if sameName && isUnique(desiredUnique) == isUnique(ex.Unique) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}

			zap.L().Info("recreating index",
				zap.String("collection", coll.Name()),
				zap.String("from", ex.Name),
				zap.String("to", desiredName),
				zap.Bool("unique", isUnique(desiredUnique)))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if wafflemongo.IsDup(err) && isUnique(desiredUnique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)",
					coll.Name(), desiredName, desiredSig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Error(err))
			continue
		}

		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", isUnique(desiredUnique)),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collections                                                                 */
/* -------------------------------------------------------------------------- */

func ensureBooks(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("books")
	models := []mongo.IndexModel{
		{
			// search and alphabetical listing
			Keys:    bson.D{{Key: "titre_ci", Value: 1}},
			Options: options.Index().SetName("idx_books_titreci"),
		},
		{
			// autres_tomes and series grouping
			Keys:    bson.D{{Key: "serie", Value: 1}, {Key: "version", Value: 1}, {Key: "tome", Value: 1}},
			Options: options.Index().SetName("idx_books_serie_version_tome"),
		},
		{
			Keys:    bson.D{{Key: "serie_ci", Value: 1}},
			Options: options.Index().SetName("idx_books_serieci"),
		},
		{
			Keys:    bson.D{{Key: "date_parution", Value: 1}},
			Options: options.Index().SetName("idx_books_date_parution"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "genre", Value: 1}},
			Options: options.Index().SetName("idx_books_type_genre"),
		},
		{
			Keys:    bson.D{{Key: "editeur", Value: 1}},
			Options: options.Index().SetName("idx_books_editeur"),
		},
		{
			Keys:    bson.D{{Key: "format", Value: 1}},
			Options: options.Index().SetName("idx_books_format"),
		},
		{
			Keys:    bson.D{{Key: "auteurs", Value: 1}},
			Options: options.Index().SetName("idx_books_auteurs"),
		},
		{
			Keys:    bson.D{{Key: "dessinateurs", Value: 1}},
			Options: options.Index().SetName("idx_books_dessinateurs"),
		},
	}
	return ensureIndexSet(ctx, c, models)
}

func ensureArtists(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("artists")
	models := []mongo.IndexModel{
		{
			// name lookup during resolution; not unique, matching existing data
			Keys:    bson.D{{Key: "nom", Value: 1}},
			Options: options.Index().SetName("idx_artists_nom"),
		},
		{
			Keys:    bson.D{{Key: "books", Value: 1}},
			Options: options.Index().SetName("idx_artists_books"),
		},
	}
	return ensureIndexSet(ctx, c, models)
}

func ensureCollections(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("collections")
	models := []mongo.IndexModel{
		{
			// one entry per (owner, book); backs the find-or-create upsert
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "book", Value: 1}},
			Options: options.Index().SetName("uniq_collections_owner_book").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "possede", Value: 1}},
			Options: options.Index().SetName("idx_collections_owner_possede"),
		},
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "souhaite", Value: 1}},
			Options: options.Index().SetName("idx_collections_owner_souhaite"),
		},
		{
			// cascade delete by book
			Keys:    bson.D{{Key: "book", Value: 1}},
			Options: options.Index().SetName("idx_collections_book"),
		},
	}
	return ensureIndexSet(ctx, c, models)
}

func ensureProductions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("marvel-productions")
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order", Value: 1}},
			Options: options.Index().SetName("uniq_productions_order").SetUnique(true),
		},
	}
	return ensureIndexSet(ctx, c, models)
}
