package artiststore_test

import (
	"testing"

	artiststore "github.com/dalemusser/comicshelf/internal/app/store/artists"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/dalemusser/comicshelf/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func names(as []models.Artist) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Nom
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResolve_CreatesMissingInInputOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := artiststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	authors, illustrators, err := store.Resolve(ctx,
		[]string{"Alan Moore", " Neil  Gaiman ", "Alan Moore", ""},
		[]string{"Dave Gibbons"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if got := names(authors); !equal(got, []string{"Alan Moore", "Neil Gaiman"}) {
		t.Errorf("authors = %v", got)
	}
	if got := names(illustrators); !equal(got, []string{"Dave Gibbons"}) {
		t.Errorf("illustrators = %v", got)
	}
	for _, a := range authors {
		if !a.Auteur || a.Dessinateur {
			t.Errorf("%s: auteur=%v dessinateur=%v", a.Nom, a.Auteur, a.Dessinateur)
		}
	}

	n, err := db.Collection("artists").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 artists, got %d", n)
	}
}

func TestResolve_NameInBothListsCreatedOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := artiststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	authors, illustrators, err := store.Resolve(ctx, []string{"Hergé"}, []string{"Hergé"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if authors[0].ID != illustrators[0].ID {
		t.Error("expected the same artist for both roles")
	}
	if !authors[0].Auteur || !authors[0].Dessinateur {
		t.Errorf("expected both roles, got %+v", authors[0])
	}

	n, _ := db.Collection("artists").CountDocuments(ctx, bson.M{"nom": "Hergé"})
	if n != 1 {
		t.Errorf("expected one Hergé, got %d", n)
	}
}

func TestResolve_ReusesExistingAndGainsRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := artiststore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing := fx.CreateArtist(ctx, "Jim Lee", false, true)

	authors, _, err := store.Resolve(ctx, []string{"Jim Lee"}, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if authors[0].ID != existing.ID {
		t.Errorf("expected existing artist %s, got %s", existing.ID.Hex(), authors[0].ID.Hex())
	}

	got, err := store.GetByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.Auteur || !got.Dessinateur {
		t.Errorf("expected auteur gained and dessinateur kept, got %+v", got)
	}
}

func TestResolve_CaseSensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := artiststore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateArtist(ctx, "moebius", true, false)

	authors, _, err := store.Resolve(ctx, []string{"Moebius"}, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	n, _ := db.Collection("artists").CountDocuments(ctx, bson.M{})
	if n != 2 {
		t.Errorf("expected a new artist for different case, have %d", n)
	}
	if authors[0].Nom != "Moebius" {
		t.Errorf("nom = %q", authors[0].Nom)
	}
}

func TestLinkUnlink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := artiststore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateArtist(ctx, "Uderzo", false, true)
	b := fx.CreateArtist(ctx, "Goscinny", true, false)
	book := primitive.NewObjectID()

	if err := store.Link(ctx, book, []primitive.ObjectID{a.ID, b.ID}); err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	// idempotent
	if err := store.Link(ctx, book, []primitive.ObjectID{a.ID}); err != nil {
		t.Fatalf("Link again failed: %v", err)
	}
	got, _ := store.GetByID(ctx, a.ID)
	if len(got.Books) != 1 || got.Books[0] != book {
		t.Errorf("books after link = %v", got.Books)
	}

	if err := store.Unlink(ctx, book, []primitive.ObjectID{a.ID}); err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}
	got, _ = store.GetByID(ctx, a.ID)
	if len(got.Books) != 0 {
		t.Errorf("books after unlink = %v", got.Books)
	}

	if err := store.UnlinkAll(ctx, book); err != nil {
		t.Fatalf("UnlinkAll failed: %v", err)
	}
	n, _ := db.Collection("artists").CountDocuments(ctx, bson.M{"books": book})
	if n != 0 {
		t.Errorf("%d artists still reference the book", n)
	}
}

func TestGetByIDs_PreservesOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := artiststore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateArtist(ctx, "A", true, false)
	b := fx.CreateArtist(ctx, "B", true, false)

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{b.ID, primitive.NewObjectID(), a.ID})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if !equal(names(got), []string{"B", "A"}) {
		t.Errorf("got %v", names(got))
	}
}

func TestSearchAndDistinct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := artiststore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateArtist(ctx, "Akira Toriyama", true, true)
	fx.CreateArtist(ctx, "Eiichiro Oda", true, true)
	fx.CreateArtist(ctx, "Tori.*", true, false)

	got, err := store.Search(ctx, "tori")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !equal(names(got), []string{"Akira Toriyama", "Tori.*"}) {
		t.Errorf("Search(tori) = %v", names(got))
	}

	// regex metacharacters are literal
	got, _ = store.Search(ctx, ".*")
	if !equal(names(got), []string{"Tori.*"}) {
		t.Errorf("Search(.*) = %v", names(got))
	}

	all, err := store.DistinctNames(ctx)
	if err != nil {
		t.Fatalf("DistinctNames failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("DistinctNames = %v", all)
	}
}
