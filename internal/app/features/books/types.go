// internal/app/features/books/types.go
package books

import (
	"github.com/dalemusser/comicshelf/internal/app/features/shared/bookview"
	bookstore "github.com/dalemusser/comicshelf/internal/app/store/books"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type booksResponse struct {
	Books []bookview.Flagged `json:"books"`
}

type releasesResponse struct {
	Books []models.Book `json:"books"`
}

type detailResponse struct {
	Book bookview.Detail `json:"book"`
}

type updatedResponse struct {
	Book bookview.Populated `json:"book"`
}

type createdResponse struct {
	BookID string `json:"bookId"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type informationResponse struct {
	Editeurs []string `json:"editeurs"`
	Genres   []string `json:"genres"`
	Formats  []string `json:"formats"`
	Series   []string `json:"series"`
	Artistes []string `json:"artistes"`
}

type namedList struct {
	Name  string             `json:"name"`
	Books []bookview.Flagged `json:"books"`
}

type listsResponse struct {
	Lists []namedList `json:"lists"`
}

type searchResponse struct {
	Books   []models.Book         `json:"books"`
	Series  []bookstore.SeriesRef `json:"series"`
	Artists []models.Artist       `json:"artists"`
}

// menuArtist is an artist with the books of one menu bucket crediting them.
type menuArtist struct {
	ID          primitive.ObjectID `json:"_id"`
	Nom         string             `json:"nom"`
	Auteur      bool               `json:"auteur"`
	Dessinateur bool               `json:"dessinateur"`
	Books       []models.Book      `json:"books"`
}

type menu struct {
	Type     string        `json:"type"`
	Genres   []string      `json:"genres"`
	Artistes []menuArtist  `json:"artistes"`
	Sample   []models.Book `json:"sample"`
}

type menusResponse struct {
	Menus []menu `json:"menus"`
}

type artistResponse struct {
	Artist models.Artist `json:"artist"`
	Books  []models.Book `json:"books"`
}
