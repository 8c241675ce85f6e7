// internal/app/features/collection/views.go
package collection

import (
	"context"
	"net/http"
	"slices"
	"time"

	uierrors "github.com/dalemusser/comicshelf/internal/app/features/errors"
	"github.com/dalemusser/comicshelf/internal/app/features/shared/bookview"
	collectionstore "github.com/dalemusser/comicshelf/internal/app/store/collections"
	"github.com/dalemusser/comicshelf/internal/app/system/inputval"
	"github.com/dalemusser/comicshelf/internal/app/system/jsonio"
	"github.com/dalemusser/comicshelf/internal/app/system/shelving"
	"github.com/dalemusser/comicshelf/internal/app/system/timeouts"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgFetchFailed = "Fetching collection failed, please try again later"

func ownerParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	owner, err := inputval.ObjectID(chi.URLParam(r, "userId"))
	if err != nil {
		uierrors.RenderInvalid(w, "userId must be a valid id")
		return primitive.NilObjectID, false
	}
	return owner, true
}

// loadRows reads the owner's entries for facet and joins each with its
// book and the book's artists. Entries whose book no longer exists are
// skipped.
func (h *Handler) loadRows(ctx context.Context, owner primitive.ObjectID, facet collectionstore.Facet) ([]bookview.Entry, error) {
	entries, err := h.Entries.ByOwner(ctx, owner, facet)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(entries))
	for i, e := range entries {
		ids[i] = e.Book
	}
	books, err := h.Books.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	all := make([]models.Book, 0, len(books))
	for _, b := range books {
		all = append(all, b)
	}
	artists, err := h.Artists.GetByIDs(ctx, bookview.ArtistIDs(all...))
	if err != nil {
		return nil, err
	}
	index := bookview.IndexArtists(artists)

	rows := make([]bookview.Entry, 0, len(entries))
	for _, e := range entries {
		b, ok := books[e.Book]
		if !ok {
			continue
		}
		rows = append(rows, bookview.Flatten(e, bookview.Populate(b, index)))
	}
	return rows, nil
}

// ServeCollection handles GET /api/collection/{userId}: owned books,
// alphabetical by shelf key or grouped by series with
// ?displayMode=bySeries.
func (h *Handler) ServeCollection(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "collection view")
	defer cancel()

	rows, err := h.loadRows(ctx, owner, collectionstore.FacetOwned)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load collection failed", err, msgFetchFailed)
		return
	}
	editeurs := bookview.Editeurs(rows)

	if query.Get(r, "displayMode") == displayBySeries {
		groups := shelving.GroupBySeries(rows, bookview.EntryKey)
		if groups == nil {
			groups = []shelving.Group[bookview.Entry]{}
		}
		jsonio.Write(w, http.StatusOK, seriesResponse{Collection: groups, Editeurs: editeurs})
		return
	}

	shelving.SortAlphabetical(rows, bookview.EntryKey)
	jsonio.Write(w, http.StatusOK, collectionResponse{Collection: rows, Editeurs: editeurs})
}

// compareRelease orders by release date, undated first.
func compareRelease(a, b bookview.Entry) int {
	da, db := a.DateParution, b.DateParution
	switch {
	case da == nil && db == nil:
		return 0
	case da == nil:
		return -1
	case db == nil:
		return 1
	default:
		return da.Compare(*db)
	}
}

// ServeWishlist handles GET /api/collection/wishlist/{userId}. Books already
// released (or without a date) are "available", the rest "incoming"; both
// are ordered by release date.
func (h *Handler) ServeWishlist(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "wishlist view")
	defer cancel()

	rows, err := h.loadRows(ctx, owner, collectionstore.FacetWishlisted)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load wishlist failed", err, msgFetchFailed)
		return
	}

	now := h.Now()
	resp := wishlistResponse{
		Available: []bookview.Entry{},
		Incoming:  []bookview.Entry{},
		Editeurs:  bookview.Editeurs(rows),
	}
	for _, row := range rows {
		if row.DateParution == nil || row.DateParution.Before(now) {
			resp.Available = append(resp.Available, row)
		} else {
			resp.Incoming = append(resp.Incoming, row)
		}
	}
	slices.SortStableFunc(resp.Available, compareRelease)
	slices.SortStableFunc(resp.Incoming, compareRelease)

	jsonio.Write(w, http.StatusOK, resp)
}

// ServeReadlist handles GET /api/collection/readlist/{userId}: one row per
// reading, bucketed by day, most recent day first.
func (h *Handler) ServeReadlist(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "readlist view")
	defer cancel()

	rows, err := h.loadRows(ctx, owner, collectionstore.FacetRead)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load readlist failed", err, msgFetchFailed)
		return
	}

	jsonio.Write(w, http.StatusOK, readlistResponse{
		Readlist: bucketReadings(rows, h.Now().Location()),
		Editeurs: bookview.Editeurs(rows),
	})
}

// bucketReadings explodes read_dates into rows and groups them by day in
// loc. Days and the rows inside a day are newest first.
func bucketReadings(rows []bookview.Entry, loc *time.Location) []readDay {
	var reads []readRow
	for _, row := range rows {
		for _, d := range row.ReadDates {
			reads = append(reads, readRow{Entry: row, ReadDate: d})
		}
	}
	slices.SortStableFunc(reads, func(a, b readRow) int {
		return b.ReadDate.Compare(a.ReadDate)
	})

	days := []readDay{}
	for _, rr := range reads {
		day := shelving.Day(rr.ReadDate.In(loc))
		if n := len(days); n > 0 && days[n-1].Date.Equal(day) {
			days[n-1].Books = append(days[n-1].Books, rr)
			continue
		}
		days = append(days, readDay{Date: day, Books: []readRow{rr}})
	}
	return days
}

// ServeMyReleases handles GET /api/collection/my-releases/{userId}: owned
// or wishlisted books releasing from the first of the current month.
func (h *Handler) ServeMyReleases(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my releases view")
	defer cancel()

	rows, err := h.loadRows(ctx, owner, collectionstore.FacetOwnedOrWishlisted)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load releases failed", err, msgFetchFailed)
		return
	}

	from := shelving.FirstOfMonth(h.Now())
	upcoming := []bookview.Entry{}
	for _, row := range rows {
		if row.DateParution != nil && !row.DateParution.Before(from) {
			upcoming = append(upcoming, row)
		}
	}
	slices.SortStableFunc(upcoming, compareRelease)

	jsonio.Write(w, http.StatusOK, releasesResponse{Books: upcoming, Editeurs: bookview.Editeurs(rows)})
}

// ServeStats handles GET /api/collection/stats/{userId}.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "stats view")
	defer cancel()

	rows, err := h.loadRows(ctx, owner, collectionstore.FacetAll)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load stats failed", err, msgFetchFailed)
		return
	}
	shelving.SortAlphabetical(rows, bookview.EntryKey)

	jsonio.Write(w, http.StatusOK, statsResponse{
		Collection: rows,
		Stats:      computeStats(rows),
		Editeurs:   bookview.Editeurs(rows),
	})
}

func computeStats(rows []bookview.Entry) stats {
	s := stats{Total: len(rows), ParEditeur: []publisherCount{}}
	perPublisher := map[string]int{}
	for _, row := range rows {
		if row.Possede {
			s.Possede++
			s.Valeur += row.Prix
			if row.Editeur != "" {
				if _, seen := perPublisher[row.Editeur]; !seen {
					s.ParEditeur = append(s.ParEditeur, publisherCount{Editeur: row.Editeur})
				}
				perPublisher[row.Editeur]++
			}
		}
		if row.Souhaite {
			s.Souhaite++
		}
		if row.Lu {
			s.Lu++
		}
		if row.Critique {
			s.Critique++
		}
	}
	for i := range s.ParEditeur {
		s.ParEditeur[i].Count = perPublisher[s.ParEditeur[i].Editeur]
	}
	slices.SortStableFunc(s.ParEditeur, func(a, b publisherCount) int {
		return b.Count - a.Count
	})
	return s
}
