package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/comicshelf/internal/app/system/metrics"
	"github.com/dalemusser/comicshelf/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var errBoom = errors.New("boom")

func outcome(name string) float64 {
	return promtest.ToFloat64(metrics.Transactions.WithLabelValues(name))
}

func countArtists(t *testing.T, db *mongo.Database, nom string) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection("artists").CountDocuments(ctx, bson.M{"nom": nom})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestRun_Commits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := outcome("committed") + outcome("fallback")
	err := Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		_, err := db.Collection("artists").InsertOne(ctx, bson.M{"nom": "Moebius"})
		return err
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := outcome("committed") + outcome("fallback") - before; got != 1 {
		t.Errorf("committed+fallback grew by %v, want 1", got)
	}
	if n := countArtists(t, db, "Moebius"); n != 1 {
		t.Errorf("artists named Moebius = %d, want 1", n)
	}
}

func TestRun_ErrorRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fallbacks := outcome("fallback")
	aborted := outcome("aborted")
	err := Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		if _, err := db.Collection("artists").InsertOne(ctx, bson.M{"nom": "Hergé"}); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Run err = %v, want errBoom", err)
	}
	if outcome("fallback") > fallbacks {
		t.Skip("server does not support transactions")
	}
	if got := outcome("aborted") - aborted; got != 1 {
		t.Errorf("aborted grew by %v, want 1", got)
	}
	if n := countArtists(t, db, "Hergé"); n != 0 {
		t.Errorf("aborted insert left %d artists behind", n)
	}
}

func TestFallback_RunsFnWithoutTransaction(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := outcome("fallback")
	ran := false
	cause := mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}
	err := fallback(ctx, zap.NewNop(), cause, func(ctx context.Context) error {
		ran = true
		return errBoom
	})
	if !ran {
		t.Error("fn did not run")
	}
	if !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want fn's error", err)
	}
	if got := outcome("fallback") - before; got != 1 {
		t.Errorf("fallback grew by %v, want 1", got)
	}

	// A nil logger is tolerated.
	if err := fallback(ctx, nil, cause, func(context.Context) error { return nil }); err != nil {
		t.Errorf("fallback with nil logger: %v", err)
	}
}
