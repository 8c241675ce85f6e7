// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/comicshelf/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections (if missing) and attaches JSON-Schema
// validators. Servers without collMod/validator support are logged and
// skipped. Transactions cannot create collections implicitly on older
// servers, so this must run before the first write.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("books", booksSchema())
	ensure("artists", artistsSchema())
	ensure("collections", collectionsSchema())
	ensure("marvel-productions", productionsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var numeric = bson.A{"double", "int", "long", "decimal"}

func nonBlank() bson.M {
	return bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
}

func booksSchema() bson.M {
	typeEnum := bson.A{}
	for _, t := range models.BookTypes {
		typeEnum = append(typeEnum, t)
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"titre", "titre_ci", "editeur", "prix", "type"},
			"properties": bson.M{
				"titre":    nonBlank(),
				"titre_ci": bson.M{"bsonType": "string"},
				"serie":    bson.M{"bsonType": "string"},
				"serie_ci": bson.M{"bsonType": "string"},
				"tome":     bson.M{"bsonType": numeric},
				"version":  bson.M{"bsonType": numeric},
				"editeur":  nonBlank(),
				"prix":     bson.M{"bsonType": numeric, "minimum": 0},
				"image":    bson.M{"bsonType": "string"},
				"format":   bson.M{"bsonType": "string"},
				"genre":    bson.M{"bsonType": "string"},
				"type": bson.M{
					"bsonType": "string",
					"enum":     typeEnum,
				},
				"poids":         bson.M{"bsonType": numeric},
				"planches":      bson.M{"bsonType": numeric},
				"date_parution": bson.M{"bsonType": "date"},
				"auteurs":       bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"dessinateurs":  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
			},
		},
	}
}

func artistsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"nom"},
			"properties": bson.M{
				"nom":         nonBlank(),
				"auteur":      bson.M{"bsonType": "bool"},
				"dessinateur": bson.M{"bsonType": "bool"},
				"books":       bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
			},
		},
	}
}

func collectionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"owner", "book"},
			"properties": bson.M{
				"owner":      bson.M{"bsonType": "objectId"},
				"book":       bson.M{"bsonType": "objectId"},
				"possede":    bson.M{"bsonType": "bool"},
				"souhaite":   bson.M{"bsonType": "bool"},
				"lu":         bson.M{"bsonType": "bool"},
				"critique":   bson.M{"bsonType": "bool"},
				"note":       bson.M{"bsonType": numeric, "minimum": 0, "maximum": 10},
				"review":     bson.M{"bsonType": "string"},
				"lien":       bson.M{"bsonType": "string"},
				"date_achat": bson.M{"bsonType": "date"},
				"read_dates": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "date"}},
			},
		},
	}
}

func productionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "type", "order"},
			"properties": bson.M{
				"title":         nonBlank(),
				"poster":        bson.M{"bsonType": "string"},
				"length":        bson.M{"bsonType": numeric, "minimum": 0},
				"type":          nonBlank(),
				"season":        bson.M{"bsonType": numeric},
				"episode":       bson.M{"bsonType": numeric},
				"episode_title": bson.M{"bsonType": "string"},
				"order":         bson.M{"bsonType": numeric, "minimum": 1},
				"watch_dates":   bson.M{"bsonType": "array", "items": bson.M{"bsonType": "date"}},
				"review":        bson.M{"bsonType": "string"},
			},
		},
	}
}
