// internal/domain/models/book.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book type buckets used by the navigation menus.
const (
	BookTypeComics = "Comics"
	BookTypeBD     = "BD"
	BookTypeMangas = "Mangas"
	BookTypeRomans = "Romans"
)

// BookTypes lists the navigation buckets in display order.
var BookTypes = []string{BookTypeComics, BookTypeBD, BookTypeMangas, BookTypeRomans}

// DefaultBookType is used when a book is created without a type.
const DefaultBookType = BookTypeComics

// Book is the central catalog entity.
//
// Serie + Version identify a multi-volume work; Tome orders volumes inside it.
// Optional numeric fields are pointers so that "not set" survives a round trip.
type Book struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Titre   string             `bson:"titre" json:"titre"`
	TitreCI string             `bson:"titre_ci" json:"-"` // lowercase, diacritics-stripped
	Serie   string             `bson:"serie,omitempty" json:"serie,omitempty"`
	SerieCI string             `bson:"serie_ci,omitempty" json:"-"`
	Tome    *int               `bson:"tome,omitempty" json:"tome,omitempty"`
	Version *int               `bson:"version,omitempty" json:"version,omitempty"`

	Editeur  string   `bson:"editeur" json:"editeur"`
	Prix     float64  `bson:"prix" json:"prix"`
	Image    string   `bson:"image" json:"image"`
	Format   string   `bson:"format,omitempty" json:"format,omitempty"`
	Genre    string   `bson:"genre,omitempty" json:"genre,omitempty"`
	Type     string   `bson:"type" json:"type"`
	Poids    *float64 `bson:"poids,omitempty" json:"poids,omitempty"`
	Planches *int     `bson:"planches,omitempty" json:"planches,omitempty"`

	DateParution *time.Time `bson:"date_parution,omitempty" json:"date_parution,omitempty"`

	Auteurs      []primitive.ObjectID `bson:"auteurs" json:"auteurs,omitempty"`
	Dessinateurs []primitive.ObjectID `bson:"dessinateurs" json:"dessinateurs,omitempty"`
}

// SeriesName returns the series the book belongs to, falling back to the
// title for one-shots.
func (b *Book) SeriesName() string {
	if b.Serie != "" {
		return b.Serie
	}
	return b.Titre
}
