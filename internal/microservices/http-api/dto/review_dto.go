package dto

import (
	"time"

	"playlog/internal/microservices/http-api/models"
)

type ScreenshotInput struct {
	URL     string  `json:"url" binding:"required"`
	Caption *string `json:"caption"`
}

type SaveFileInput struct {
	URL      string `json:"url" binding:"required"`
	Filename string `json:"filename" binding:"required"`
}

// ListQuery binds the ?userId=&gameId=&limit= filters of the list endpoints.
type ListQuery struct {
	UserID string `form:"userId" binding:"omitempty,uuid"`
	GameID string `form:"gameId" binding:"omitempty,uuid"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type CreateReviewRequest struct {
	GameID        string            `json:"gameId" binding:"required,uuid"`
	Rating        *float64          `json:"rating" binding:"required,rating"`
	Platform      string            `json:"platform" binding:"required"`
	StartDate     *string           `json:"startDate"`
	FinishDate    *string           `json:"finishDate"`
	PlayTimeHours *float64          `json:"playTimeHours" binding:"omitempty,gte=0"`
	Content       *string           `json:"content"`
	Screenshots   []ScreenshotInput `json:"screenshots" binding:"omitempty,dive"`
	SaveFile      *SaveFileInput    `json:"saveFile"`
}

// UpdateReviewRequest: absent keys are left alone, null clears nullable fields.
type UpdateReviewRequest struct {
	Rating              Nullable[float64]       `json:"rating,omitzero"`
	Platform            Nullable[string]        `json:"platform,omitzero"`
	StartDate           Nullable[string]        `json:"startDate,omitzero"`
	FinishDate          Nullable[string]        `json:"finishDate,omitzero"`
	PlayTimeHours       Nullable[float64]       `json:"playTimeHours,omitzero"`
	Content             Nullable[string]        `json:"content,omitzero"`
	ScreenshotsToAdd    []ScreenshotInput       `json:"screenshotsToAdd,omitempty" binding:"omitempty,dive"`
	ScreenshotsToRemove []string                `json:"screenshotsToRemove,omitempty" binding:"omitempty,dive,uuid"`
	SaveFile            Nullable[SaveFileInput] `json:"saveFile,omitzero" binding:"-"`
}

type ScreenshotResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Caption   *string   `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
}

type SaveFileResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReviewResponse struct {
	ID            string               `json:"id"`
	UserID        string               `json:"userId"`
	GameID        string               `json:"gameId"`
	Rating        float64              `json:"rating"`
	Platform      string               `json:"platform"`
	StartDate     *time.Time           `json:"startDate"`
	FinishDate    *time.Time           `json:"finishDate"`
	PlayTimeHours *float64             `json:"playTimeHours"`
	Content       *string              `json:"content"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	User          *UserSummary         `json:"user,omitempty"`
	Game          *GameResponse        `json:"game,omitempty"`
	Screenshots   []ScreenshotResponse `json:"screenshots"`
	SaveFile      *SaveFileResponse    `json:"saveFile"`
}

func FromScreenshotModels(shots []models.Screenshot) []ScreenshotResponse {
	out := make([]ScreenshotResponse, 0, len(shots))
	for _, s := range shots {
		out = append(out, ScreenshotResponse{
			ID:        s.ID,
			URL:       s.URL,
			Caption:   s.Caption,
			CreatedAt: s.CreatedAt,
		})
	}
	return out
}

// FromReviewModel converts a Review model, including whatever relations were preloaded.
func FromReviewModel(r *models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		GameID:        r.GameID,
		Rating:        r.Rating,
		Platform:      r.Platform,
		StartDate:     r.StartDate,
		FinishDate:    r.FinishDate,
		PlayTimeHours: r.PlayTimeHours,
		Content:       r.Content,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Screenshots:   FromScreenshotModels(r.Screenshots),
	}
	if r.User.ID != "" {
		u := FromUserModel(&r.User)
		resp.User = &u
	}
	if r.Game.ID != "" {
		g := FromGameModel(&r.Game)
		resp.Game = &g
	}
	if r.SaveFile != nil {
		resp.SaveFile = &SaveFileResponse{
			ID:        r.SaveFile.ID,
			URL:       r.SaveFile.URL,
			Filename:  r.SaveFile.Filename,
			CreatedAt: r.SaveFile.CreatedAt,
		}
	}
	return resp
}

func FromReviewModels(reviews []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, FromReviewModel(&reviews[i]))
	}
	return out
}
