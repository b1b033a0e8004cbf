package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"playlog/internal/metrics"
)

const (
	defaultAPIURL   = "https://api.igdb.com/v4"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"

	// IGDB allows 4 requests per second per client id
	rateLimit = 4
	rateBurst = 4

	searchLimit = 10
	gameFields  = "name,cover.url,summary,platforms.name,screenshots.url"

	// refresh the credential a minute before Twitch expires it
	tokenExpirySkew = time.Minute

	breakerName = "igdb"
)

var (
	ErrNotConfigured = errors.New("IGDB credentials not configured")
	ErrUnavailable   = errors.New("game catalog unavailable")
)

// Options configures a Client. Zero values fall back to the public IGDB/Twitch endpoints.
type Options struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	TokenURL     string
	Timeout      time.Duration
	Tokens       TokenStore
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client talks to IGDB. Every call is rate limited, bounded by Timeout and
// guarded by a circuit breaker; nothing is retried.
type Client struct {
	clientID     string
	clientSecret string
	apiURL       string
	tokenURL     string
	timeout      time.Duration
	tokens       TokenStore
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[[]Game]
	logger       *slog.Logger
}

// NewClient creates a new IGDB API client
func NewClient(opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = defaultAPIURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = defaultTokenURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Tokens == nil {
		opts.Tokens = NewMemoryTokenStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	c := &Client{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		apiURL:       strings.TrimRight(opts.APIURL, "/"),
		tokenURL:     opts.TokenURL,
		timeout:      opts.Timeout,
		tokens:       opts.Tokens,
		httpClient:   opts.HTTPClient,
		rateLimiter:  rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		logger:       opts.Logger,
	}
	c.breaker = newBreaker(c.logger)
	return c
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker[[]Game] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]Game](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a caller giving up is not an upstream failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrNotConfigured)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("catalog circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Configured reports whether client credentials are present.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// SearchGames runs a free-text search and returns at most 10 games.
func (c *Client) SearchGames(ctx context.Context, query string) ([]Game, error) {
	body := fmt.Sprintf(`search "%s"; fields %s; limit %d;`, escapeQuery(query), gameFields, searchLimit)
	return c.query(ctx, "search", body)
}

// GetGameByID returns the game with the given IGDB id, or nil when IGDB has none.
func (c *Client) GetGameByID(ctx context.Context, id int64) (*Game, error) {
	body := fmt.Sprintf(`where id = %d; fields %s;`, id, gameFields)
	games, err := c.query(ctx, "get", body)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, nil
	}
	return &games[0], nil
}

func (c *Client) query(ctx context.Context, operation, body string) ([]Game, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	games, err := c.breaker.Execute(func() ([]Game, error) {
		return c.doQuery(ctx, body)
	})

	switch {
	case err == nil:
		metrics.RecordCatalogCall(operation, "success", time.Since(start))
		return games, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCatalogCall(operation, "rejected", 0)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, ErrNotConfigured):
		return nil, err
	default:
		metrics.RecordCatalogCall(operation, "failure", time.Since(start))
		c.logger.Error("catalog request failed", "operation", operation, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func (c *Client) doQuery(ctx context.Context, body string) ([]Game, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/games", strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Twitch revoked the credential early; the next call fetches a new one
		if err := c.tokens.Clear(ctx); err != nil {
			c.logger.Warn("failed to clear catalog token", "error", err)
		}
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var games []Game
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return games, nil
}

// accessToken returns the cached credential or fetches a fresh one.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	token, ok, err := c.tokens.Get(ctx)
	if err != nil {
		c.logger.Warn("catalog token store read failed, fetching a new token", "error", err)
	} else if ok {
		return token, nil
	}

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get IGDB access token: HTTP %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("token response has no access_token")
	}
	metrics.CatalogTokenRefreshes.Inc()

	ttl := time.Duration(tr.ExpiresIn)*time.Second - tokenExpirySkew
	if ttl > 0 {
		if err := c.tokens.Set(ctx, tr.AccessToken, ttl); err != nil {
			c.logger.Warn("failed to cache catalog token", "error", err)
		}
	}
	return tr.AccessToken, nil
}

// escapeQuery makes free text safe inside an Apicalypse string literal.
func escapeQuery(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	return strings.ReplaceAll(q, `"`, `\"`)
}
