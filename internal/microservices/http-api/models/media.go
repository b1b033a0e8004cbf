package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Screenshot belongs to exactly one of a Review or a CurrentlyPlaying entry.
type Screenshot struct {
	ID                 string    `gorm:"primaryKey;type:uuid" json:"id"`
	URL                string    `gorm:"column:url;not null" json:"url"`
	Caption            *string   `json:"caption"`
	ReviewID           *string   `gorm:"type:uuid;index;check:chk_screenshots_one_parent,(review_id IS NULL) <> (currently_playing_id IS NULL)" json:"reviewId"`
	CurrentlyPlayingID *string   `gorm:"type:uuid;index" json:"currentlyPlayingId"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (s *Screenshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (Screenshot) TableName() string {
	return "screenshots"
}

type SaveFile struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	URL       string    `gorm:"column:url;not null" json:"url"`
	Filename  string    `gorm:"not null" json:"filename"`
	ReviewID  string    `gorm:"type:uuid;uniqueIndex;not null" json:"reviewId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *SaveFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

func (SaveFile) TableName() string {
	return "save_files"
}

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Game{},
		&Review{},
		&CurrentlyPlaying{},
		&Screenshot{},
		&SaveFile{},
	}
}
