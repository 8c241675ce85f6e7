// internal/app/features/books/lists.go
package books

import (
	bookstore "github.com/dalemusser/comicshelf/internal/app/store/books"
	"go.mongodb.org/mongo-driver/bson"
)

// curatedList is one fixed named query served by /lists.
type curatedList struct {
	Name   string
	Filter bson.M
}

// curatedLists are evaluated and returned in this order.
var curatedLists = []curatedList{
	{Name: "omnibus", Filter: bson.M{"format": "Omnibus"}},
	{Name: "intégrales", Filter: bson.M{"format": "Intégrale"}},
	{Name: "urban-comics", Filter: bson.M{"editeur": "Urban Comics"}},
	{Name: "pokemon", Filter: bookstore.ContainsFilter("pokémon")},
	{Name: "star-wars", Filter: bookstore.ContainsFilter("star wars")},
}
