package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"playlog/internal/microservices/http-api/service"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantBody   string
	}{
		{fmt.Errorf("%w: rating out of range", service.ErrValidation), http.StatusBadRequest, `{"error":"validation failed: rating out of range"}`},
		{service.ErrInvalidToken, http.StatusUnauthorized, `{"error":"invalid token"}`},
		{service.ErrForbidden, http.StatusForbidden, `{"error":"forbidden"}`},
		{service.ErrReviewNotFound, http.StatusNotFound, `{"error":"review not found"}`},
		{service.ErrCurrentlyPlayingNotFound, http.StatusNotFound, `{"error":"currently playing entry not found"}`},
		{service.ErrGameNotFound, http.StatusNotFound, `{"error":"game not found"}`},
		{service.ErrUserNotFound, http.StatusNotFound, `{"error":"user not found"}`},
		{service.ErrEmailInUse, http.StatusConflict, `{"error":"email already in use"}`},
		{service.ErrUploadNotConfigured, http.StatusServiceUnavailable, `{"error":"file upload is not configured"}`},
		{service.ErrCatalogUnavailable, http.StatusInternalServerError, `{"error":"something went wrong, please try again"}`},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, `{"error":"something went wrong, please try again"}`},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			router := setupRouter()
			router.GET("/", func(c *gin.Context) { respondError(c, tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestCurrentUserIDMissing(t *testing.T) {
	router := setupRouter()
	router.GET("/", func(c *gin.Context) {
		if _, ok := currentUserID(c); ok {
			c.Status(http.StatusOK)
		}
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
