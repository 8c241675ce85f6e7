package productionstore_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	productionstore "github.com/dalemusser/comicshelf/internal/app/store/productions"
	"github.com/dalemusser/comicshelf/internal/app/system/indexes"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/dalemusser/comicshelf/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_AssignsOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := productionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Create(ctx, models.MarvelProduction{Title: "Iron Man", Poster: "/p/im.jpg", Length: 126})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.Order != 1 {
		t.Errorf("first order = %d, want 1", first.Order)
	}
	if first.Type != models.DefaultProductionType {
		t.Errorf("Type = %q, want %q", first.Type, models.DefaultProductionType)
	}

	second, err := store.Create(ctx, models.MarvelProduction{
		Title: "Loki", Poster: "/p/loki.jpg", Length: 50, Type: "Série",
		Season: testutil.IntPtr(1), Episode: testutil.IntPtr(1), EpisodeTitle: "Glorious Purpose",
	})
	if err != nil {
		t.Fatalf("Create second failed: %v", err)
	}
	if second.Order != 2 {
		t.Errorf("second order = %d, want 2", second.Order)
	}
	if second.Type != "Série" {
		t.Errorf("Type = %q, want Série", second.Type)
	}
}

func TestStore_Create_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := productionstore.New(db)

	const n = 4
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, models.MarvelProduction{Title: "Film", Poster: "/p.jpg", Length: 100})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Create failed: %v", err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != n {
		t.Fatalf("len = %d, want %d", len(list), n)
	}
	for i, p := range list {
		if p.Order != i+1 {
			t.Errorf("list[%d].Order = %d, want %d", i, p.Order, i+1)
		}
	}
}

func TestStore_List_Sorted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := productionstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateProduction(ctx, "Thor", 3)
	fixtures.CreateProduction(ctx, "Captain America", 1)
	fixtures.CreateProduction(ctx, "Hulk", 2)

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"Captain America", "Hulk", "Thor"}
	for i, p := range list {
		if p.Title != want[i] {
			t.Errorf("list[%d] = %q, want %q", i, p.Title, want[i])
		}
	}

	next, err := store.Create(ctx, models.MarvelProduction{Title: "Avengers", Poster: "/a.jpg", Length: 143})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if next.Order != 4 {
		t.Errorf("order = %d, want 4", next.Order)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := productionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, productionstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_RecordWatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := productionstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateProduction(ctx, "Black Panther", 1)

	watched := testutil.TimePtr(2024, time.February, 10)
	got, err := store.RecordWatch(ctx, p.ID, watched, "")
	if err != nil {
		t.Fatalf("RecordWatch failed: %v", err)
	}
	if len(got.WatchDates) != 1 || !got.WatchDates[0].Equal(*watched) {
		t.Errorf("WatchDates = %v", got.WatchDates)
	}
	if got.Review != "" {
		t.Errorf("Review = %q, want empty", got.Review)
	}

	got, err = store.RecordWatch(ctx, p.ID, nil, "Wakanda forever")
	if err != nil {
		t.Fatalf("RecordWatch review failed: %v", err)
	}
	if got.Review != "Wakanda forever" || len(got.WatchDates) != 1 {
		t.Errorf("unexpected production: %+v", got)
	}

	got, err = store.RecordWatch(ctx, p.ID, nil, "")
	if err != nil {
		t.Fatalf("RecordWatch noop failed: %v", err)
	}
	if got.Review != "Wakanda forever" {
		t.Errorf("noop changed review: %q", got.Review)
	}

	if _, err := store.RecordWatch(ctx, primitive.NewObjectID(), watched, ""); !errors.Is(err, productionstore.ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}
