package service

import (
	"strings"
	"time"

	"playlog/internal/microservices/http-api/dto"
	"playlog/internal/microservices/http-api/models"
	"playlog/internal/validation"
)

func checkRating(r float64) error {
	if !validation.ValidRating(r) {
		return invalid("rating must be between 0 and 10")
	}
	return nil
}

func checkPlayTime(h *float64) error {
	if h != nil && *h < 0 {
		return invalid("playTimeHours must not be negative")
	}
	return nil
}

func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := dto.ParseDate(*s)
	if err != nil {
		return nil, invalid("%s: %v", field, err)
	}
	return &t, nil
}

func toScreenshots(in []dto.ScreenshotInput) ([]models.Screenshot, error) {
	shots := make([]models.Screenshot, 0, len(in))
	for i, s := range in {
		url := strings.TrimSpace(s.URL)
		if url == "" {
			return nil, invalid("screenshots[%d].url is required", i)
		}
		shots = append(shots, models.Screenshot{URL: url, Caption: nonEmpty(s.Caption)})
	}
	return shots, nil
}

func toSaveFile(in dto.SaveFileInput) (*models.SaveFile, error) {
	url := strings.TrimSpace(in.URL)
	filename := strings.TrimSpace(in.Filename)
	if url == "" || filename == "" {
		return nil, invalid("saveFile requires url and filename")
	}
	return &models.SaveFile{URL: url, Filename: filename}, nil
}

// nullableDate turns a PATCH date into the value to store: nil clears the column.
func nullableDate(field string, n dto.Nullable[string]) (any, error) {
	if !n.Valid || strings.TrimSpace(n.Value) == "" {
		return nil, nil
	}
	t, err := dto.ParseDate(n.Value)
	if err != nil {
		return nil, invalid("%s: %v", field, err)
	}
	return t, nil
}

// nullableText stores blank strings as NULL.
func nullableText(n dto.Nullable[string]) any {
	if !n.Valid {
		return nil
	}
	if v := nonEmpty(&n.Value); v != nil {
		return *v
	}
	return nil
}
