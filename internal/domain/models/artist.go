// internal/domain/models/artist.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Artist is a person credited on books, as author (Auteur) and/or
// illustrator (Dessinateur).
//
// Artists are created lazily the first time a name is credited on a book
// and are never deleted; deleting a book only pulls its id from Books.
type Artist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Nom         string               `bson:"nom" json:"nom"`
	Auteur      bool                 `bson:"auteur" json:"auteur"`
	Dessinateur bool                 `bson:"dessinateur" json:"dessinateur"`
	Books       []primitive.ObjectID `bson:"books" json:"books"`
}
