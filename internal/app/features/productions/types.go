// internal/app/features/productions/types.go
package productions

import (
	"github.com/dalemusser/comicshelf/internal/app/system/inputval"
	"github.com/dalemusser/comicshelf/internal/domain/models"
)

type listResponse struct {
	Productions []models.MarvelProduction `json:"productions"`
}

type productionResponse struct {
	Production models.MarvelProduction `json:"production"`
}

type createdResponse struct {
	ProdID string `json:"prodId"`
}

type createInput struct {
	Title        string `json:"title" validate:"required"`
	Poster       string `json:"poster" validate:"required"`
	Length       *int   `json:"length" validate:"required,gte=0"`
	Type         string `json:"type"`
	Season       *int   `json:"season" validate:"omitempty,gte=0"`
	Episode      *int   `json:"episode" validate:"omitempty,gte=0"`
	EpisodeTitle string `json:"episode_title"`
}

// watchInput is the PATCH body. Other production fields are never changed.
type watchInput struct {
	Review    string         `json:"review"`
	WatchDate *inputval.Date `json:"watch_date"`
}
