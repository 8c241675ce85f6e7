// Package bookview builds the JSON shapes shared by the book and collection
// endpoints: books with their artists populated, books carrying a user's
// collection flags, and the flattened book+entry rows of the list views.
package bookview

import (
	"time"

	"github.com/dalemusser/comicshelf/internal/app/system/shelving"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Populated is a book whose artist references are replaced by the artist
// records.
type Populated struct {
	models.Book
	Auteurs      []models.Artist `json:"auteurs"`
	Dessinateurs []models.Artist `json:"dessinateurs"`
}

// Populate resolves b's artist ids through artists. Ids missing from the
// map are skipped.
func Populate(b models.Book, artists map[primitive.ObjectID]models.Artist) Populated {
	return Populated{
		Book:         b,
		Auteurs:      pick(b.Auteurs, artists),
		Dessinateurs: pick(b.Dessinateurs, artists),
	}
}

func pick(ids []primitive.ObjectID, artists map[primitive.ObjectID]models.Artist) []models.Artist {
	out := make([]models.Artist, 0, len(ids))
	for _, id := range ids {
		if a, ok := artists[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ArtistIDs collects the distinct artist ids referenced by books.
func ArtistIDs(books ...models.Book) []primitive.ObjectID {
	seen := map[primitive.ObjectID]struct{}{}
	var out []primitive.ObjectID
	for _, b := range books {
		for _, id := range append(append([]primitive.ObjectID{}, b.Auteurs...), b.Dessinateurs...) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// IndexArtists keys artists by id.
func IndexArtists(artists []models.Artist) map[primitive.ObjectID]models.Artist {
	m := make(map[primitive.ObjectID]models.Artist, len(artists))
	for _, a := range artists {
		m[a.ID] = a
	}
	return m
}

// Flagged is a summary row carrying the user's ownership flags when the
// user has an entry for the book.
type Flagged struct {
	models.Book
	Possede  *bool `json:"possede,omitempty"`
	Souhaite *bool `json:"souhaite,omitempty"`
}

// MergeFlags attaches possede/souhaite from entries to books. With
// withWish false only possede is merged.
func MergeFlags(books []models.Book, entries map[primitive.ObjectID]models.CollectionEntry, withWish bool) []Flagged {
	out := make([]Flagged, len(books))
	for i, b := range books {
		out[i] = Flagged{Book: b}
		e, ok := entries[b.ID]
		if !ok {
			continue
		}
		possede := e.Possede
		out[i].Possede = &possede
		if withWish {
			souhaite := e.Souhaite
			out[i].Souhaite = &souhaite
		}
	}
	return out
}

// Facets is the full set of a user's collection fields for one book.
type Facets struct {
	Possede   bool        `json:"possede"`
	Souhaite  bool        `json:"souhaite"`
	Lu        bool        `json:"lu"`
	Critique  bool        `json:"critique"`
	Note      *float64    `json:"note,omitempty"`
	Review    string      `json:"review,omitempty"`
	Lien      string      `json:"lien,omitempty"`
	DateAchat *time.Time  `json:"date_achat,omitempty"`
	ReadDates []time.Time `json:"read_dates"`
}

func FacetsOf(e models.CollectionEntry) *Facets {
	rd := e.ReadDates
	if rd == nil {
		rd = []time.Time{}
	}
	return &Facets{
		Possede:   e.Possede,
		Souhaite:  e.Souhaite,
		Lu:        e.Lu,
		Critique:  e.Critique,
		Note:      e.Note,
		Review:    e.Review,
		Lien:      e.Lien,
		DateAchat: e.DateAchat,
		ReadDates: rd,
	}
}

// Detail is the single-book response: populated artists, the user's facets
// when an entry exists, and the other volumes of the series.
type Detail struct {
	Populated
	*Facets
	AutresTomes []models.Book `json:"autres_tomes"`
}

// Entry is one row of a collection view: the populated book overlaid with
// the entry fields. _id is the entry id; the book id moves to id_book.
type Entry struct {
	Populated
	models.CollectionEntry
	ID     primitive.ObjectID `json:"_id"`
	IDBook primitive.ObjectID `json:"id_book"`
}

// Flatten joins entry e with its populated book.
func Flatten(e models.CollectionEntry, b Populated) Entry {
	if e.ReadDates == nil {
		e.ReadDates = []time.Time{}
	}
	return Entry{
		Populated:       b,
		CollectionEntry: e,
		ID:              e.ID,
		IDBook:          b.Book.ID,
	}
}

// ShelfKey places a book on the shelf: its series, or its title for
// one-shots.
func ShelfKey(b models.Book) shelving.Key {
	return shelving.Key{Serie: b.SeriesName(), Version: b.Version, Tome: b.Tome}
}

// EntryKey is ShelfKey for flattened rows.
func EntryKey(e Entry) shelving.Key { return ShelfKey(e.Populated.Book) }

// Editeurs returns the distinct publishers of rows, in first-seen order.
func Editeurs(rows []Entry) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Editeur
	}
	return shelving.Distinct(names)
}
