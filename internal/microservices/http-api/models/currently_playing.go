package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CurrentlyPlaying is an in-progress playthrough. It ends by being converted
// into a Review or deleted.
type CurrentlyPlaying struct {
	ID            string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string     `gorm:"type:uuid;not null;index" json:"userId"`
	GameID        string     `gorm:"type:uuid;not null;index" json:"gameId"`
	Platform      string     `gorm:"not null" json:"platform"`
	StartDate     *time.Time `json:"startDate"`
	PlayTimeHours *float64   `gorm:"check:play_time_hours >= 0" json:"playTimeHours"`
	Notes         *string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Associations
	User        User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Game        Game         `json:"game,omitempty" gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
	Screenshots []Screenshot `json:"screenshots" gorm:"foreignKey:CurrentlyPlayingID;constraint:OnDelete:CASCADE;"`
}

func (cp *CurrentlyPlaying) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	return nil
}

func (CurrentlyPlaying) TableName() string {
	return "currently_playing"
}
