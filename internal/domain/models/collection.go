// internal/domain/models/collection.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Target list names accepted by the add-to-collection operation.
const (
	ListCollection = "collection"
	ListWishlist   = "wishlist"
)

// CollectionEntry joins one user to one book.
//
// The four facets are independent flags: Possede (owned), Souhaite
// (wishlisted), Lu (read) and Critique (has a review or link). There is at
// most one entry per (Owner, Book).
type CollectionEntry struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Owner primitive.ObjectID `bson:"owner" json:"owner"`
	Book  primitive.ObjectID `bson:"book" json:"book"`

	Possede  bool `bson:"possede" json:"possede"`
	Souhaite bool `bson:"souhaite" json:"souhaite"`
	Lu       bool `bson:"lu" json:"lu"`
	Critique bool `bson:"critique" json:"critique"`

	Note      *float64    `bson:"note,omitempty" json:"note,omitempty"`
	Review    string      `bson:"review,omitempty" json:"review,omitempty"`
	Lien      string      `bson:"lien,omitempty" json:"lien,omitempty"`
	DateAchat *time.Time  `bson:"date_achat,omitempty" json:"date_achat,omitempty"`
	ReadDates []time.Time `bson:"read_dates" json:"read_dates"`
}
