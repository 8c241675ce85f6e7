package bookstore_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	bookstore "github.com/dalemusser/comicshelf/internal/app/store/books"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/dalemusser/comicshelf/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func titles(bs []models.Book) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Titre
	}
	return out
}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	m := map[string]int{}
	for _, g := range got {
		m[g]++
	}
	for _, w := range want {
		if m[w] == 0 {
			return false
		}
		m[w]--
	}
	return true
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Book{
		Titre:   "  L'Écume des jours ",
		Editeur: "Gallimard",
		Prix:    9.9,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Titre != "L'Écume des jours" {
		t.Errorf("Titre = %q", created.Titre)
	}
	if created.TitreCI != "l'ecume des jours" {
		t.Errorf("TitreCI = %q", created.TitreCI)
	}
	if created.Type != models.DefaultBookType {
		t.Errorf("Type = %q, want default", created.Type)
	}
	if created.Auteurs == nil || created.Dessinateurs == nil {
		t.Error("artist lists should be empty, not nil")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Prix != 9.9 || got.Tome != nil {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, bookstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_Replace_ClearsOmittedFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b := fx.CreateBook(ctx, models.Book{
		Titre: "Batman: Year One", Serie: "Batman", Tome: testutil.IntPtr(1),
		Genre: "Super-héros", Prix: 15,
	})

	updated, err := store.Replace(ctx, models.Book{ID: b.ID, Titre: "Batman Year One", Editeur: "Urban Comics", Prix: 17})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if updated.Type != models.DefaultBookType {
		t.Errorf("Type = %q", updated.Type)
	}

	got, _ := store.GetByID(ctx, b.ID)
	if got.Serie != "" || got.Tome != nil || got.Genre != "" {
		t.Errorf("expected cleared fields, got %+v", got)
	}
	if got.Prix != 17 || got.Editeur != "Urban Comics" {
		t.Errorf("unexpected values %+v", got)
	}

	if _, err := store.Replace(ctx, models.Book{ID: primitive.NewObjectID(), Titre: "x", Editeur: "y"}); !errors.Is(err, bookstore.ErrNotFound) {
		t.Errorf("Replace missing err = %v, want ErrNotFound", err)
	}
}

func TestStore_FutureReleases(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateBook(ctx, models.Book{Titre: "Feb", DateParution: testutil.TimePtr(2024, time.February, 29)})
	fx.CreateBook(ctx, models.Book{Titre: "Mar1", DateParution: testutil.TimePtr(2024, time.March, 1)})
	fx.CreateBook(ctx, models.Book{Titre: "Apr", DateParution: testutil.TimePtr(2024, time.April, 10)})
	fx.CreateBook(ctx, models.Book{Titre: "Undated"})

	got, err := store.FutureReleases(ctx, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FutureReleases failed: %v", err)
	}
	want := []string{"Mar1", "Apr"}
	if len(got) != 2 || got[0].Titre != want[0] || got[1].Titre != want[1] {
		t.Errorf("got %v, want %v", titles(got), want)
	}
	if got[0].Editeur != "" {
		t.Error("release projection should not include editeur")
	}
}

func TestStore_OtherVolumes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	t1 := fx.CreateBook(ctx, models.Book{Titre: "OP 1", Serie: "One Piece", Tome: testutil.IntPtr(1)})
	fx.CreateBook(ctx, models.Book{Titre: "OP 2", Serie: "One Piece", Tome: testutil.IntPtr(2)})
	fx.CreateBook(ctx, models.Book{Titre: "OP Edition originale 1", Serie: "One Piece", Version: testutil.IntPtr(2), Tome: testutil.IntPtr(1)})
	oneShot := fx.CreateBook(ctx, models.Book{Titre: "Watchmen"})

	got, err := store.OtherVolumes(ctx, t1)
	if err != nil {
		t.Fatalf("OtherVolumes failed: %v", err)
	}
	if !sameSet(titles(got), []string{"OP 2"}) {
		t.Errorf("got %v", titles(got))
	}

	got, _ = store.OtherVolumes(ctx, oneShot)
	if len(got) != 0 {
		t.Errorf("one-shot should have no other volumes, got %v", titles(got))
	}
}

func TestStore_Search_TitleOrSeriesOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateBook(ctx, models.Book{Titre: "Pokémon La grande aventure 1", Serie: "Pokémon La grande aventure"})
	fx.CreateBook(ctx, models.Book{Titre: "Soleil et Lune", Serie: "POKEMON Soleil"})
	fx.CreateBook(ctx, models.Book{Titre: "Guide", Editeur: "Pokémon Press"})
	fx.CreateBook(ctx, models.Book{Titre: "Autre", Format: "Pokémon"})

	got, err := store.Search(ctx, "Pokémon")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !sameSet(titles(got), []string{"Pokémon La grande aventure 1", "Soleil et Lune"}) {
		t.Errorf("Search = %v", titles(got))
	}

	series, err := store.SearchSeries(ctx, "pokemon")
	if err != nil {
		t.Fatalf("SearchSeries failed: %v", err)
	}
	if len(series) != 2 {
		t.Errorf("SearchSeries = %+v", series)
	}

	got, _ = store.Search(ctx, "(")
	if len(got) != 0 {
		t.Errorf("regex metacharacters should be literal, got %v", titles(got))
	}
}

func TestStore_SearchSeries_DistinctPairs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateBook(ctx, models.Book{Titre: "1", Serie: "Naruto", Tome: testutil.IntPtr(1)})
	fx.CreateBook(ctx, models.Book{Titre: "2", Serie: "Naruto", Tome: testutil.IntPtr(2)})
	fx.CreateBook(ctx, models.Book{Titre: "3", Serie: "Naruto", Version: testutil.IntPtr(2)})

	got, err := store.SearchSeries(ctx, "naru")
	if err != nil {
		t.Fatalf("SearchSeries failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 pairs, got %+v", got)
	}
	if got[0].Version != nil || got[1].Version == nil || *got[1].Version != 2 {
		t.Errorf("unexpected order/versions: %+v", got)
	}
}

func TestStore_DistinctAndSample(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateBook(ctx, models.Book{Titre: "a", Editeur: "Glénat", Genre: "Shonen", Type: models.BookTypeMangas})
	fx.CreateBook(ctx, models.Book{Titre: "b", Editeur: "Glénat", Genre: "Seinen", Type: models.BookTypeMangas})
	fx.CreateBook(ctx, models.Book{Titre: "c", Editeur: "Kana", Type: models.BookTypeMangas})
	fx.CreateBook(ctx, models.Book{Titre: "d", Editeur: "Dupuis", Genre: "Humour", Type: models.BookTypeBD})

	editeurs, err := store.Distinct(ctx, "editeur", nil)
	if err != nil {
		t.Fatalf("Distinct failed: %v", err)
	}
	if !slices.Equal(editeurs, []string{"Dupuis", "Glénat", "Kana"}) {
		t.Errorf("editeurs = %v, want sorted", editeurs)
	}

	genres, _ := store.Distinct(ctx, "genre", bson.M{"type": models.BookTypeMangas})
	if !sameSet(genres, []string{"Shonen", "Seinen"}) {
		t.Errorf("manga genres = %v", genres)
	}

	sample, err := store.Sample(ctx, models.BookTypeMangas, 2)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(sample) != 2 {
		t.Fatalf("expected 2 sampled books, got %d", len(sample))
	}
	for _, b := range sample {
		if b.Type != models.BookTypeMangas {
			t.Errorf("sampled book outside bucket: %+v", b)
		}
	}
}

func TestStore_ByArtist(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateArtist(ctx, "Tome", true, false)
	d := fx.CreateArtist(ctx, "Janry", false, true)
	fx.CreateBook(ctx, models.Book{Titre: "Spirou 1", Auteurs: []primitive.ObjectID{a.ID}, Dessinateurs: []primitive.ObjectID{d.ID}})
	fx.CreateBook(ctx, models.Book{Titre: "Petit Spirou", Dessinateurs: []primitive.ObjectID{d.ID}})
	fx.CreateBook(ctx, models.Book{Titre: "Other"})

	got, err := store.ByArtist(ctx, d.ID)
	if err != nil {
		t.Fatalf("ByArtist failed: %v", err)
	}
	if !sameSet(titles(got), []string{"Spirou 1", "Petit Spirou"}) {
		t.Errorf("got %v", titles(got))
	}
}
