// internal/app/features/books/read.go
package books

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/comicshelf/internal/app/features/errors"
	"github.com/dalemusser/comicshelf/internal/app/features/shared/bookview"
	artiststore "github.com/dalemusser/comicshelf/internal/app/store/artists"
	bookstore "github.com/dalemusser/comicshelf/internal/app/store/books"
	collectionstore "github.com/dalemusser/comicshelf/internal/app/store/collections"
	"github.com/dalemusser/comicshelf/internal/app/system/inputval"
	"github.com/dalemusser/comicshelf/internal/app/system/jsonio"
	"github.com/dalemusser/comicshelf/internal/app/system/normalize"
	"github.com/dalemusser/comicshelf/internal/app/system/shelving"
	"github.com/dalemusser/comicshelf/internal/app/system/timeouts"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// menuSampleSize is how many random books each menu bucket shows.
const menuSampleSize = 2

// userParam reads the optional ?user= id. Writes a 422 and returns false
// when it is present but malformed.
func userParam(w http.ResponseWriter, r *http.Request) (*primitive.ObjectID, bool) {
	user, err := inputval.OptionalObjectID(query.Get(r, "user"))
	if err != nil {
		uierrors.RenderInvalid(w, "user must be a valid id")
		return nil, false
	}
	return user, true
}

// userEntries returns the user's entries keyed by book, or nil without a user.
func (h *Handler) userEntries(ctx context.Context, user *primitive.ObjectID) (map[primitive.ObjectID]models.CollectionEntry, error) {
	if user == nil {
		return nil, nil
	}
	return h.Entries.MapByBook(ctx, *user)
}

// ServeList handles GET /api/book/.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, ok := userParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list books")
	defer cancel()

	books, err := h.Books.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list books failed", err, "La collecte de livres a échoué, veuillez réessayer...")
		return
	}
	entries, err := h.userEntries(ctx, user)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user collection failed", err,
			"La comparaison de la bibliothèque avec votre collection a échoué, veuillez réessayer...")
		return
	}

	jsonio.Write(w, http.StatusOK, booksResponse{Books: bookview.MergeFlags(books, entries, true)})
}

// ServeBook handles GET /api/book/{id}.
func (h *Handler) ServeBook(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectID(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderInvalid(w, "id must be a valid id")
		return
	}
	user, ok := userParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get book")
	defer cancel()

	book, err := h.Books.GetByID(ctx, id)
	if errors.Is(err, bookstore.ErrNotFound) {
		uierrors.RenderNotFound(w, "Impossible de trouver le livre avec l'identifiant fourni.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "get book failed", err, "La collecte de livre a échoué, veuillez réessayer...")
		return
	}

	artists, err := h.Artists.GetByIDs(ctx, bookview.ArtistIDs(book))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load book artists failed", err, "La collecte de livre a échoué, veuillez réessayer...")
		return
	}

	others, err := h.Books.OtherVolumes(ctx, book)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load other volumes failed", err, "La collecte de livre a échoué, veuillez réessayer...")
		return
	}
	shelving.SortByTome(others, bookview.ShelfKey)

	detail := bookview.Detail{
		Populated:   bookview.Populate(book, bookview.IndexArtists(artists)),
		AutresTomes: others,
	}

	if user != nil {
		e, err := h.Entries.Get(ctx, *user, id)
		switch {
		case err == nil:
			detail.Facets = bookview.FacetsOf(e)
		case errors.Is(err, collectionstore.ErrNotFound):
		default:
			h.ErrLog.LogServerError(w, r, "load collection entry failed", err,
				"La comparaison du livre avec votre collection a échoué, veuillez réessayer...")
			return
		}
	}

	jsonio.Write(w, http.StatusOK, detailResponse{Book: detail})
}

// ServeFutureReleases handles GET /api/book/future-releases: books released
// from the first day of the current month onwards.
func (h *Handler) ServeFutureReleases(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "future releases")
	defer cancel()

	books, err := h.Books.FutureReleases(ctx, shelving.FirstOfMonth(h.Now()))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "future releases failed", err,
			"La collecte de livres à venir a échoué, veuillez réessayer...")
		return
	}
	jsonio.Write(w, http.StatusOK, releasesResponse{Books: books})
}

// ServeAllInformation handles GET /api/book/all-information.
func (h *Handler) ServeAllInformation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "all information")
	defer cancel()

	var resp informationResponse
	fields := []struct {
		name string
		dst  *[]string
	}{
		{"editeur", &resp.Editeurs},
		{"genre", &resp.Genres},
		{"format", &resp.Formats},
		{"serie", &resp.Series},
	}
	for _, f := range fields {
		vals, err := h.Books.Distinct(ctx, f.name, nil)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "distinct "+f.name+" failed", err,
				"La collecte d'informations sur les livres a échoué, veuillez réessayer...")
			return
		}
		*f.dst = vals
	}

	names, err := h.Artists.DistinctNames(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "distinct artist names failed", err,
			"La collecte d'informations sur les livres a échoué, veuillez réessayer...")
		return
	}
	resp.Artistes = names

	jsonio.Write(w, http.StatusOK, resp)
}

// ServeLists handles GET /api/book/lists.
func (h *Handler) ServeLists(w http.ResponseWriter, r *http.Request) {
	user, ok := userParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "curated lists")
	defer cancel()

	entries, err := h.userEntries(ctx, user)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user collection failed", err, "")
		return
	}

	resp := listsResponse{Lists: make([]namedList, 0, len(curatedLists))}
	for _, l := range curatedLists {
		books, err := h.Books.Find(ctx, l.Filter)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "curated list "+l.Name+" failed", err, "")
			return
		}
		resp.Lists = append(resp.Lists, namedList{
			Name:  l.Name,
			Books: bookview.MergeFlags(books, entries, false),
		})
	}
	jsonio.Write(w, http.StatusOK, resp)
}

// ServeSearch handles GET /api/book/search?q=.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	q := normalize.Query(query.Search(r, "q"))

	resp := searchResponse{
		Books:   []models.Book{},
		Series:  []bookstore.SeriesRef{},
		Artists: []models.Artist{},
	}
	if q == "" {
		jsonio.Write(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "search")
	defer cancel()

	var err error
	if resp.Books, err = h.Books.Search(ctx, q); err != nil {
		h.ErrLog.LogServerError(w, r, "search books failed", err, "")
		return
	}
	if resp.Series, err = h.Books.SearchSeries(ctx, q); err != nil {
		h.ErrLog.LogServerError(w, r, "search series failed", err, "")
		return
	}
	if resp.Artists, err = h.Artists.Search(ctx, q); err != nil {
		h.ErrLog.LogServerError(w, r, "search artists failed", err, "")
		return
	}
	jsonio.Write(w, http.StatusOK, resp)
}

// ServeMenus handles GET /api/book/menus-data: per book type, the genres
// present, the artists credited with their books of that type, and a
// random sample.
func (h *Handler) ServeMenus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "menus data")
	defer cancel()

	resp := menusResponse{Menus: make([]menu, 0, len(models.BookTypes))}
	for _, t := range models.BookTypes {
		m, err := h.buildMenu(ctx, t)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "menu "+t+" failed", err, "")
			return
		}
		resp.Menus = append(resp.Menus, m)
	}
	jsonio.Write(w, http.StatusOK, resp)
}

func (h *Handler) buildMenu(ctx context.Context, bookType string) (menu, error) {
	books, err := h.Books.ByType(ctx, bookType)
	if err != nil {
		return menu{}, err
	}
	genres, err := h.Books.Distinct(ctx, "genre", bson.M{"type": bookType})
	if err != nil {
		return menu{}, err
	}
	artists, err := h.Artists.GetByIDs(ctx, bookview.ArtistIDs(books...))
	if err != nil {
		return menu{}, err
	}
	sample, err := h.Books.Sample(ctx, bookType, menuSampleSize)
	if err != nil {
		return menu{}, err
	}

	// one entry per artist, holding every bucket book that credits them
	byArtist := make(map[primitive.ObjectID][]models.Book, len(artists))
	for _, b := range books {
		for _, id := range bookview.ArtistIDs(b) {
			summary := b
			summary.Auteurs, summary.Dessinateurs = nil, nil
			byArtist[id] = append(byArtist[id], summary)
		}
	}
	out := make([]menuArtist, 0, len(artists))
	for _, a := range artists {
		out = append(out, menuArtist{
			ID:          a.ID,
			Nom:         a.Nom,
			Auteur:      a.Auteur,
			Dessinateur: a.Dessinateur,
			Books:       byArtist[a.ID],
		})
	}

	return menu{Type: bookType, Genres: genres, Artistes: out, Sample: sample}, nil
}

// ServeArtist handles GET /api/book/artist/{id}.
func (h *Handler) ServeArtist(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectID(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderInvalid(w, "id must be a valid id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "books by artist")
	defer cancel()

	artist, err := h.Artists.GetByID(ctx, id)
	if errors.Is(err, artiststore.ErrNotFound) {
		uierrors.RenderNotFound(w, "Impossible de trouver l'artiste avec l'identifiant fourni.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "get artist failed", err, "")
		return
	}

	books, err := h.Books.ByArtist(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "books by artist failed", err, "")
		return
	}
	jsonio.Write(w, http.StatusOK, artistResponse{Artist: artist, Books: books})
}
