// Package server assembles the gin engine serving the JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"playlog/internal/microservices/http-api/handler"
	"playlog/internal/microservices/http-api/middleware"
	"playlog/internal/microservices/http-api/service"
)

// Dependencies are the services and switches the router is built from.
type Dependencies struct {
	Auth    service.AuthService
	Games   service.GameService
	Reviews service.ReviewService
	Playing service.CurrentlyPlayingService
	Users   service.UserService
	Uploads service.UploadService

	UploadMaxBytes int64
	// UploadDir is served under /uploads when set (local development storage).
	UploadDir string

	// Ping backs /check-conn. Nil reports the API as alive without a database check.
	Ping func(ctx context.Context) error

	AccessLog bool
	Metrics   bool
}

// NewRouter wires every handler onto a new engine.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	if deps.AccessLog {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	if deps.Metrics {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/check-conn", checkConn(deps.Ping))

	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	public := r.Group("")
	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))

	handler.NewAuthHandler(deps.Auth).RegisterRoutes(public)
	handler.NewGameHandler(deps.Games).RegisterRoutes(public)
	handler.NewUserHandler(deps.Users).RegisterRoutes(public)
	handler.NewReviewHandler(deps.Reviews).RegisterRoutes(public, protected)
	handler.NewCurrentlyPlayingHandler(deps.Playing).RegisterRoutes(public, protected)
	handler.NewUploadHandler(deps.Uploads, deps.UploadMaxBytes).RegisterRoutes(protected)

	return r
}

func checkConn(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	}
}
