package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"playlog/internal/microservices/http-api/dto"
	"playlog/internal/microservices/http-api/service"
)

const (
	requestTimeout = 5 * time.Second
	// catalog calls and uploads talk to a third party
	externalTimeout = 15 * time.Second
)

type GameHandler struct {
	gameService service.GameService
}

func NewGameHandler(gameService service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

func (h *GameHandler) RegisterRoutes(rg *gin.RouterGroup) {
	games := rg.Group("/games")
	{
		games.GET("/search", h.Search)
		games.GET("", h.List)
		games.POST("", h.Upsert)
		games.GET("/:id", h.Get)
	}
}

// Search queries the catalog and caches the hits.
// GET /games/search?q=zelda
func (h *GameHandler) Search(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), externalTimeout)
	defer cancel()

	games, err := h.gameService.Search(ctx, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"games": games})
}

// Upsert makes sure a catalog game exists locally and returns it.
// POST /games
func (h *GameHandler) Upsert(c *gin.Context) {
	var req dto.UpsertGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), externalTimeout)
	defer cancel()

	game, err := h.gameService.Ensure(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": game})
}

// List returns cached games, newest first.
// GET /games?page=1&page_size=20
func (h *GameHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	q.Normalize()

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, err := h.gameService.List(ctx, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get returns one game with its reviews.
// GET /games/:id
func (h *GameHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	game, err := h.gameService.GetDetail(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": game})
}
