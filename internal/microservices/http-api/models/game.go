package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Game is the local cache of a catalog entry, keyed by its IGDB id.
type Game struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	IgdbID      int64     `gorm:"column:igdb_id;uniqueIndex;not null" json:"igdbId"`
	Title       string    `gorm:"not null" json:"title"`
	CoverURL    *string   `gorm:"column:cover_url" json:"coverUrl"`
	Description *string   `gorm:"type:text" json:"description"`
	Platforms   *string   `json:"platforms"` // ", " joined platform names
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

func (Game) TableName() string {
	return "games"
}
