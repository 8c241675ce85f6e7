// internal/domain/models/production.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultProductionType is used when a production is added without a type.
const DefaultProductionType = "Film"

// MarvelProduction is a film or episode in the watch tracker, ordered by
// the Order field assigned at insert time.
type MarvelProduction struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Poster       string             `bson:"poster" json:"poster"`
	Length       int                `bson:"length" json:"length"` // minutes
	Type         string             `bson:"type" json:"type"`
	Season       *int               `bson:"season,omitempty" json:"season,omitempty"`
	Episode      *int               `bson:"episode,omitempty" json:"episode,omitempty"`
	EpisodeTitle string             `bson:"episode_title,omitempty" json:"episode_title,omitempty"`
	Order        int                `bson:"order" json:"order"`
	WatchDates   []time.Time        `bson:"watch_dates" json:"watch_dates"`
	Review       string             `bson:"review,omitempty" json:"review,omitempty"`
}
