package catalog

import "strings"

// Game is one IGDB game record as returned by the /games endpoint with the
// fields requested in gameFields.
type Game struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Cover       *Image     `json:"cover,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Platforms   []Platform `json:"platforms,omitempty"`
	Screenshots []Image    `json:"screenshots,omitempty"`
}

type Image struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type Platform struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// tokenResponse is the Twitch client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
	TokenType   string `json:"token_type"`
}

// ImageSize names an IGDB image size preset.
type ImageSize string

const (
	SizeThumb      ImageSize = "thumb"
	SizeCoverSmall ImageSize = "cover_small"
	SizeCoverBig   ImageSize = "cover_big"
)

// FormatCoverURL turns IGDB's protocol-relative thumbnail URL
// (//images.igdb.com/igdb/image/upload/t_thumb/co1234.jpg) into an https URL
// of the requested size.
func FormatCoverURL(url string, size ImageSize) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	return strings.Replace(url, "t_thumb", "t_"+string(size), 1)
}

// CoverURL returns the big cover URL, or "" when the game has no cover.
func (g Game) CoverURL() string {
	if g.Cover == nil {
		return ""
	}
	return FormatCoverURL(g.Cover.URL, SizeCoverBig)
}

// PlatformNames joins platform names the way they are stored on a local game row.
func (g Game) PlatformNames() string {
	names := make([]string, 0, len(g.Platforms))
	for _, p := range g.Platforms {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}
