package dto

import (
	"time"

	"playlog/internal/microservices/http-api/models"
)

// UpsertGameRequest: when Title is omitted the game is fetched from the catalog by IgdbID.
type UpsertGameRequest struct {
	IgdbID      int64   `json:"igdbId" binding:"required,gt=0"`
	Title       *string `json:"title"`
	CoverURL    *string `json:"coverUrl"`
	Description *string `json:"description"`
	Platforms   *string `json:"platforms"`
}

type GameResponse struct {
	ID          string    `json:"id"`
	IgdbID      int64     `json:"igdbId"`
	Title       string    `json:"title"`
	CoverURL    *string   `json:"coverUrl"`
	Description *string   `json:"description"`
	Platforms   *string   `json:"platforms"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func FromGameModel(g *models.Game) GameResponse {
	return GameResponse{
		ID:          g.ID,
		IgdbID:      g.IgdbID,
		Title:       g.Title,
		CoverURL:    g.CoverURL,
		Description: g.Description,
		Platforms:   g.Platforms,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// GameDetailResponse is a cached game with every review written about it.
type GameDetailResponse struct {
	GameResponse
	Reviews       []ReviewResponse `json:"reviews"`
	ReviewCount   int64            `json:"reviewCount"`
	AverageRating float64          `json:"averageRating"`
}

// PaginatedGameResponse for returning paginated games
type PaginatedGameResponse struct {
	Data       []GameResponse `json:"data"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int64          `json:"total"`
	TotalPages int64          `json:"totalPages"`
}

func NewPaginatedGameResponse(games []models.Game, total int64, page, pageSize int) *PaginatedGameResponse {
	data := make([]GameResponse, 0, len(games))
	for i := range games {
		data = append(data, FromGameModel(&games[i]))
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	return &PaginatedGameResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// PageQuery binds ?page=&page_size=
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize applies the defaults 1 and 20.
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
}
