package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"playlog/internal/microservices/http-api/dto"
	"playlog/internal/microservices/http-api/service"
)

type CurrentlyPlayingHandler struct {
	service service.CurrentlyPlayingService
}

func NewCurrentlyPlayingHandler(svc service.CurrentlyPlayingService) *CurrentlyPlayingHandler {
	return &CurrentlyPlayingHandler{service: svc}
}

func (h *CurrentlyPlayingHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/currently-playing", h.List)
	public.GET("/currently-playing/:id", h.Get)

	cp := protected.Group("/currently-playing")
	{
		cp.POST("", h.Create)
		cp.PATCH("/:id", h.Update)
		cp.DELETE("/:id", h.Delete)
		cp.POST("/:id/convert", h.Convert)
	}
}

// GET /currently-playing?userId=&gameId=&limit=
func (h *CurrentlyPlayingHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entries, err := h.service.List(ctx, q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"currentlyPlaying": entries})
}

// GET /currently-playing/:id
func (h *CurrentlyPlayingHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entry, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"currentlyPlaying": entry})
}

// POST /currently-playing
func (h *CurrentlyPlayingHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCurrentlyPlayingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entry, err := h.service.Create(ctx, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"currentlyPlaying": entry})
}

// Update applies a partial change. A screenshots array replaces the whole set.
// PATCH /currently-playing/:id
func (h *CurrentlyPlayingHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCurrentlyPlayingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entry, err := h.service.Update(ctx, userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"currentlyPlaying": entry})
}

// DELETE /currently-playing/:id
func (h *CurrentlyPlayingHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.service.Delete(ctx, userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Convert turns the entry into a review.
// POST /currently-playing/:id/convert
func (h *CurrentlyPlayingHandler) Convert(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	review, err := h.service.Convert(ctx, userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}
