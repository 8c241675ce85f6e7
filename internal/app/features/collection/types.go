// internal/app/features/collection/types.go
package collection

import (
	"time"

	"github.com/dalemusser/comicshelf/internal/app/features/shared/bookview"
	"github.com/dalemusser/comicshelf/internal/app/system/shelving"
)

// displayBySeries is the ?displayMode value that groups the collection.
const displayBySeries = "bySeries"

type collectionResponse struct {
	Collection []bookview.Entry `json:"collection"`
	Editeurs   []string         `json:"editeurs"`
}

type seriesResponse struct {
	Collection []shelving.Group[bookview.Entry] `json:"collection"`
	Editeurs   []string                         `json:"editeurs"`
}

type wishlistResponse struct {
	Available []bookview.Entry `json:"available"`
	Incoming  []bookview.Entry `json:"incoming"`
	Editeurs  []string         `json:"editeurs"`
}

// readRow is one reading of a book.
type readRow struct {
	bookview.Entry
	ReadDate time.Time `json:"read_date"`
}

// readDay holds the readings of one calendar day.
type readDay struct {
	Date  time.Time `json:"date"`
	Books []readRow `json:"books"`
}

type readlistResponse struct {
	Readlist []readDay `json:"readlist"`
	Editeurs []string  `json:"editeurs"`
}

type releasesResponse struct {
	Books    []bookview.Entry `json:"books"`
	Editeurs []string         `json:"editeurs"`
}

type publisherCount struct {
	Editeur string `json:"editeur"`
	Count   int    `json:"count"`
}

type stats struct {
	Total      int              `json:"total"`
	Possede    int              `json:"possede"`
	Souhaite   int              `json:"souhaite"`
	Lu         int              `json:"lu"`
	Critique   int              `json:"critique"`
	Valeur     float64          `json:"valeur"` // sum of prix over owned books
	ParEditeur []publisherCount `json:"par_editeur"`
}

type statsResponse struct {
	Collection []bookview.Entry `json:"collection"`
	Stats      stats            `json:"stats"`
	Editeurs   []string         `json:"editeurs"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
