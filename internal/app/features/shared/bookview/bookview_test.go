package bookview

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intp(i int) *int { return &i }

func TestPopulate_KeepsOrderAndSkipsMissing(t *testing.T) {
	a1 := models.Artist{ID: primitive.NewObjectID(), Nom: "Goscinny"}
	a2 := models.Artist{ID: primitive.NewObjectID(), Nom: "Uderzo"}
	missing := primitive.NewObjectID()

	b := models.Book{
		ID:           primitive.NewObjectID(),
		Titre:        "Astérix le Gaulois",
		Auteurs:      []primitive.ObjectID{a1.ID, missing},
		Dessinateurs: []primitive.ObjectID{a2.ID},
	}
	p := Populate(b, IndexArtists([]models.Artist{a2, a1}))

	if len(p.Auteurs) != 1 || p.Auteurs[0].Nom != "Goscinny" {
		t.Errorf("Auteurs = %+v", p.Auteurs)
	}
	if len(p.Dessinateurs) != 1 || p.Dessinateurs[0].Nom != "Uderzo" {
		t.Errorf("Dessinateurs = %+v", p.Dessinateurs)
	}
}

func TestArtistIDs_Distinct(t *testing.T) {
	x, y := primitive.NewObjectID(), primitive.NewObjectID()
	ids := ArtistIDs(
		models.Book{Auteurs: []primitive.ObjectID{x}, Dessinateurs: []primitive.ObjectID{x, y}},
		models.Book{Auteurs: []primitive.ObjectID{y}},
	)
	if len(ids) != 2 || ids[0] != x || ids[1] != y {
		t.Errorf("ArtistIDs = %v", ids)
	}
}

func TestMergeFlags(t *testing.T) {
	owned := models.Book{ID: primitive.NewObjectID(), Titre: "A"}
	other := models.Book{ID: primitive.NewObjectID(), Titre: "B"}
	entries := map[primitive.ObjectID]models.CollectionEntry{
		owned.ID: {Possede: true, Souhaite: false},
	}

	rows := MergeFlags([]models.Book{owned, other}, entries, true)
	if rows[0].Possede == nil || !*rows[0].Possede || rows[0].Souhaite == nil || *rows[0].Souhaite {
		t.Errorf("owned row flags = %v/%v", rows[0].Possede, rows[0].Souhaite)
	}
	if rows[1].Possede != nil || rows[1].Souhaite != nil {
		t.Error("book without entry should carry no flags")
	}

	rows = MergeFlags([]models.Book{owned}, entries, false)
	if rows[0].Souhaite != nil {
		t.Error("souhaite should not be merged when withWish is false")
	}
}

func TestFlatten_JSON(t *testing.T) {
	book := models.Book{
		ID:      primitive.NewObjectID(),
		Titre:   "One Piece",
		Serie:   "One Piece",
		Tome:    intp(1),
		Editeur: "Glénat",
		Type:    models.BookTypeMangas,
	}
	entry := models.CollectionEntry{
		ID:      primitive.NewObjectID(),
		Owner:   primitive.NewObjectID(),
		Book:    book.ID,
		Possede: true,
	}

	row := Flatten(entry, Populate(book, nil))
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got["_id"] != entry.ID.Hex() {
		t.Errorf("_id = %v, want entry id %s", got["_id"], entry.ID.Hex())
	}
	if got["id_book"] != book.ID.Hex() {
		t.Errorf("id_book = %v, want %s", got["id_book"], book.ID.Hex())
	}
	if got["titre"] != "One Piece" || got["editeur"] != "Glénat" {
		t.Errorf("book fields missing: %s", data)
	}
	if got["possede"] != true {
		t.Errorf("possede = %v", got["possede"])
	}
	if _, ok := got["read_dates"].([]any); !ok {
		t.Errorf("read_dates should be an array: %s", data)
	}
}

func TestDetail_OmitsFacetsWithoutEntry(t *testing.T) {
	d := Detail{Populated: Populate(models.Book{ID: primitive.NewObjectID(), Titre: "X"}, nil), AutresTomes: []models.Book{}}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "possede") {
		t.Errorf("unexpected facets: %s", data)
	}

	read := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d.Facets = FacetsOf(models.CollectionEntry{Lu: true, ReadDates: []time.Time{read}})
	data, err = json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"lu":true`) || !strings.Contains(string(data), `"autres_tomes":[]`) {
		t.Errorf("facets not merged: %s", data)
	}
}

func TestEditeurs(t *testing.T) {
	rows := []Entry{
		{Populated: Populated{Book: models.Book{Editeur: "Dargaud"}}},
		{Populated: Populated{Book: models.Book{Editeur: "Glénat"}}},
		{Populated: Populated{Book: models.Book{Editeur: "Dargaud"}}},
	}
	got := Editeurs(rows)
	if len(got) != 2 || got[0] != "Dargaud" || got[1] != "Glénat" {
		t.Errorf("Editeurs = %v", got)
	}
}
