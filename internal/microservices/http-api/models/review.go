package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID            string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string     `gorm:"type:uuid;not null;index" json:"userId"`
	GameID        string     `gorm:"type:uuid;not null;index" json:"gameId"`
	Rating        float64    `gorm:"not null;check:rating >= 0 AND rating <= 10" json:"rating"`
	Platform      string     `gorm:"not null" json:"platform"`
	StartDate     *time.Time `json:"startDate"`
	FinishDate    *time.Time `json:"finishDate"`
	PlayTimeHours *float64   `gorm:"check:play_time_hours >= 0" json:"playTimeHours"`
	Content       *string    `gorm:"type:text" json:"content"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Associations
	User        User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Game        Game         `json:"game,omitempty" gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
	Screenshots []Screenshot `json:"screenshots" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
	SaveFile    *SaveFile    `json:"saveFile" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

func (Review) TableName() string {
	return "reviews"
}
