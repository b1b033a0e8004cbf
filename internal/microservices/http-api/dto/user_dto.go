package dto

import "playlog/internal/microservices/http-api/models"

// UserSummary is the public projection of a user embedded in other responses.
type UserSummary struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image"`
}

func FromUserModel(u *models.User) UserSummary {
	return UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Image: u.Image,
	}
}

// ProfileResponse backs the user profile page.
type ProfileResponse struct {
	User             UserSummary                `json:"user"`
	Reviews          []ReviewResponse           `json:"reviews"`
	CurrentlyPlaying []CurrentlyPlayingResponse `json:"currentlyPlaying"`
	ReviewCount      int64                      `json:"reviewCount"`
	AverageRating    float64                    `json:"averageRating"`
	TotalPlayTime    float64                    `json:"totalPlayTimeHours"`
}
