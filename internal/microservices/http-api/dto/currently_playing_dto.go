package dto

import (
	"time"

	"playlog/internal/microservices/http-api/models"
)

type CreateCurrentlyPlayingRequest struct {
	GameID        string            `json:"gameId" binding:"required,uuid"`
	Platform      string            `json:"platform" binding:"required"`
	StartDate     *string           `json:"startDate"`
	PlayTimeHours *float64          `json:"playTimeHours" binding:"omitempty,gte=0"`
	Notes         *string           `json:"notes"`
	Screenshots   []ScreenshotInput `json:"screenshots" binding:"omitempty,dive"`
}

// UpdateCurrentlyPlayingRequest: Screenshots, when present, replaces the whole set.
type UpdateCurrentlyPlayingRequest struct {
	Platform      Nullable[string]            `json:"platform,omitzero"`
	StartDate     Nullable[string]            `json:"startDate,omitzero"`
	PlayTimeHours Nullable[float64]           `json:"playTimeHours,omitzero"`
	Notes         Nullable[string]            `json:"notes,omitzero"`
	Screenshots   Nullable[[]ScreenshotInput] `json:"screenshots,omitzero" binding:"-"`
}

// ConvertRequest finishes a playthrough. Content falls back to the entry's notes.
type ConvertRequest struct {
	Rating     *float64 `json:"rating" binding:"required,rating"`
	FinishDate *string  `json:"finishDate"`
	Content    *string  `json:"content"`
}

type CurrentlyPlayingResponse struct {
	ID            string               `json:"id"`
	UserID        string               `json:"userId"`
	GameID        string               `json:"gameId"`
	Platform      string               `json:"platform"`
	StartDate     *time.Time           `json:"startDate"`
	PlayTimeHours *float64             `json:"playTimeHours"`
	Notes         *string              `json:"notes"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	User          *UserSummary         `json:"user,omitempty"`
	Game          *GameResponse        `json:"game,omitempty"`
	Screenshots   []ScreenshotResponse `json:"screenshots"`
}

func FromCurrentlyPlayingModel(cp *models.CurrentlyPlaying) CurrentlyPlayingResponse {
	resp := CurrentlyPlayingResponse{
		ID:            cp.ID,
		UserID:        cp.UserID,
		GameID:        cp.GameID,
		Platform:      cp.Platform,
		StartDate:     cp.StartDate,
		PlayTimeHours: cp.PlayTimeHours,
		Notes:         cp.Notes,
		CreatedAt:     cp.CreatedAt,
		UpdatedAt:     cp.UpdatedAt,
		Screenshots:   FromScreenshotModels(cp.Screenshots),
	}
	if cp.User.ID != "" {
		u := FromUserModel(&cp.User)
		resp.User = &u
	}
	if cp.Game.ID != "" {
		g := FromGameModel(&cp.Game)
		resp.Game = &g
	}
	return resp
}

func FromCurrentlyPlayingModels(entries []models.CurrentlyPlaying) []CurrentlyPlayingResponse {
	out := make([]CurrentlyPlayingResponse, 0, len(entries))
	for i := range entries {
		out = append(out, FromCurrentlyPlayingModel(&entries[i]))
	}
	return out
}
