package client

// http_client.go wraps the playlog JSON API for the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"playlog/internal/catalog"
	"playlog/internal/microservices/http-api/dto"
)

// ErrUnauthorized means the access token was missing, expired or rejected.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response with the server's {"error": ...} message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// Unwrap lets callers test for ErrUnauthorized with errors.Is.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Auth

func (c *HTTPClient) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserSummary, error) {
	var out struct {
		User dto.UserSummary `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	var out dto.RefreshResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: refreshToken}, nil)
}

// Games

func (c *HTTPClient) SearchGames(ctx context.Context, query string) ([]catalog.Game, error) {
	var out struct {
		Games []catalog.Game `json:"games"`
	}
	if err := c.do(ctx, http.MethodGet, "/games/search?q="+url.QueryEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return out.Games, nil
}

// AddGame caches the catalog game locally and returns the local record.
func (c *HTTPClient) AddGame(ctx context.Context, igdbID int64) (*dto.GameResponse, error) {
	var out struct {
		Game dto.GameResponse `json:"game"`
	}
	if err := c.do(ctx, http.MethodPost, "/games", dto.UpsertGameRequest{IgdbID: igdbID}, &out); err != nil {
		return nil, err
	}
	return &out.Game, nil
}

// Reviews

func listPath(base string, q dto.ListQuery) string {
	v := url.Values{}
	if q.UserID != "" {
		v.Set("userId", q.UserID)
	}
	if q.GameID != "" {
		v.Set("gameId", q.GameID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(v) == 0 {
		return base
	}
	return base + "?" + v.Encode()
}

func (c *HTTPClient) ListReviews(ctx context.Context, q dto.ListQuery) ([]dto.ReviewResponse, error) {
	var out struct {
		Reviews []dto.ReviewResponse `json:"reviews"`
	}
	if err := c.do(ctx, http.MethodGet, listPath("/reviews", q), nil, &out); err != nil {
		return nil, err
	}
	return out.Reviews, nil
}

func (c *HTTPClient) CreateReview(ctx context.Context, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	var out struct {
		Review dto.ReviewResponse `json:"review"`
	}
	if err := c.do(ctx, http.MethodPost, "/reviews", req, &out); err != nil {
		return nil, err
	}
	return &out.Review, nil
}

func (c *HTTPClient) UpdateReview(ctx context.Context, id string, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	var out struct {
		Review dto.ReviewResponse `json:"review"`
	}
	if err := c.do(ctx, http.MethodPatch, "/reviews/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out.Review, nil
}

func (c *HTTPClient) DeleteReview(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil)
}

// Currently playing

func (c *HTTPClient) ListPlaying(ctx context.Context, q dto.ListQuery) ([]dto.CurrentlyPlayingResponse, error) {
	var out struct {
		CurrentlyPlaying []dto.CurrentlyPlayingResponse `json:"currentlyPlaying"`
	}
	if err := c.do(ctx, http.MethodGet, listPath("/currently-playing", q), nil, &out); err != nil {
		return nil, err
	}
	return out.CurrentlyPlaying, nil
}

func (c *HTTPClient) StartPlaying(ctx context.Context, req dto.CreateCurrentlyPlayingRequest) (*dto.CurrentlyPlayingResponse, error) {
	var out struct {
		CurrentlyPlaying dto.CurrentlyPlayingResponse `json:"currentlyPlaying"`
	}
	if err := c.do(ctx, http.MethodPost, "/currently-playing", req, &out); err != nil {
		return nil, err
	}
	return &out.CurrentlyPlaying, nil
}

func (c *HTTPClient) UpdatePlaying(ctx context.Context, id string, req dto.UpdateCurrentlyPlayingRequest) (*dto.CurrentlyPlayingResponse, error) {
	var out struct {
		CurrentlyPlaying dto.CurrentlyPlayingResponse `json:"currentlyPlaying"`
	}
	if err := c.do(ctx, http.MethodPatch, "/currently-playing/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out.CurrentlyPlaying, nil
}

func (c *HTTPClient) ConvertPlaying(ctx context.Context, id string, req dto.ConvertRequest) (*dto.ReviewResponse, error) {
	var out struct {
		Review dto.ReviewResponse `json:"review"`
	}
	if err := c.do(ctx, http.MethodPost, "/currently-playing/"+url.PathEscape(id)+"/convert", req, &out); err != nil {
		return nil, err
	}
	return &out.Review, nil
}

// Users

func (c *HTTPClient) Profile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	var out struct {
		Profile dto.ProfileResponse `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// Upload sends the file at path as the multipart field "file" and returns its URL.
func (c *HTTPClient) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
