package metricsstore_test

import (
	"context"
	"testing"

	metricsstore "github.com/dalemusser/comicshelf/internal/app/store/metrics"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/dalemusser/comicshelf/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFetchCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if got := metricsstore.FetchCounts(ctx, db, zap.NewNop()); got != (metricsstore.Counts{}) {
		t.Errorf("counts = %+v, want zero", got)
	}
}

func TestFetchCounts_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateArtist(ctx, "Hergé", true, true)
	b1 := fx.CreateBook(ctx, models.Book{Titre: "Tintin au Tibet", Prix: 12, Auteurs: []primitive.ObjectID{a.ID}})
	b2 := fx.CreateBook(ctx, models.Book{Titre: "Coke en stock", Prix: 12})
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	fx.CreateEntry(ctx, models.CollectionEntry{Owner: alice, Book: b1.ID, Possede: true})
	fx.CreateEntry(ctx, models.CollectionEntry{Owner: alice, Book: b2.ID, Souhaite: true})
	fx.CreateEntry(ctx, models.CollectionEntry{Owner: bob, Book: b1.ID, Lu: true})
	fx.CreateProduction(ctx, "Iron Man", 1)

	got := metricsstore.FetchCounts(ctx, db, zap.NewNop())
	want := metricsstore.Counts{Books: 2, Artists: 1, Entries: 3, Users: 2, Productions: 1}
	if got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}
}

func TestFetchCounts_FailuresLoggedAsZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateBook(ctx, models.Book{Titre: "Astérix le Gaulois", Prix: 10})

	core, logs := observer.New(zap.WarnLevel)
	canceled, stop := context.WithCancel(context.Background())
	stop()

	if got := metricsstore.FetchCounts(canceled, db, zap.New(core)); got != (metricsstore.Counts{}) {
		t.Errorf("counts = %+v, want zero", got)
	}
	if n := logs.Len(); n != 5 {
		t.Errorf("logged %d warnings, want one per count (5)", n)
	}
	if n := logs.FilterField(zap.String("collection", "books")).Len(); n != 1 {
		t.Errorf("books failure logged %d times, want 1", n)
	}
}
