package metricsstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Counts is the set of catalog totals reported by /status.
type Counts struct {
	Books       int64 `json:"books"`
	Artists     int64 `json:"artists"`
	Entries     int64 `json:"collections"`
	Users       int64 `json:"users"` // distinct owners of collection entries
	Productions int64 `json:"productions"`
}

// FetchCounts returns the catalog totals.
// Intentionally tolerant: on error it logs and returns 0 for that counter.
func FetchCounts(ctx context.Context, db *mongo.Database, log *zap.Logger) Counts {
	var out Counts

	count := func(coll string, dst *int64) {
		n, err := db.Collection(coll).EstimatedDocumentCount(ctx)
		if err != nil {
			log.Warn("count failed", zap.String("collection", coll), zap.Error(err))
			return
		}
		*dst = n
	}
	count("books", &out.Books)
	count("artists", &out.Artists)
	count("collections", &out.Entries)
	count("marvel-productions", &out.Productions)

	owners, err := db.Collection("collections").Distinct(ctx, "owner", bson.M{})
	if err != nil {
		log.Warn("count owners failed", zap.Error(err))
	} else {
		out.Users = int64(len(owners))
	}

	return out
}
