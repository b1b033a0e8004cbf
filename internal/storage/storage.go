package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrNotConfigured is returned by every upload when no backend could be set up.
var ErrNotConfigured = errors.New("file storage not configured")

// Uploader stores one uploaded file and returns the URL it is reachable at.
type Uploader interface {
	Save(ctx context.Context, filename string, r io.Reader, contentType string) (string, error)
	Backend() string
}

type Options struct {
	Development   bool
	UploadDir     string
	BucketURL     string
	PublicBaseURL string
	SignedURLTTL  time.Duration
}

// New picks the backend: local disk in development, otherwise the blob
// bucket at BucketURL. A missing or placeholder bucket URL is not an error at
// startup; uploads then fail with ErrNotConfigured.
func New(ctx context.Context, opts Options) (Uploader, error) {
	if opts.Development {
		return NewLocalStore(opts.UploadDir)
	}
	if isPlaceholder(opts.BucketURL) {
		return Unconfigured{}, nil
	}
	return OpenBlobStore(ctx, opts.BucketURL, opts.PublicBaseURL, opts.SignedURLTTL)
}

func isPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.HasPrefix(strings.ToLower(v), "your-") || strings.Contains(v, "://your-")
}

// Unconfigured rejects every upload.
type Unconfigured struct{}

func (Unconfigured) Save(context.Context, string, io.Reader, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) Backend() string { return "none" }

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// ObjectName builds the stored name: "<unix millis>-<sanitised original name>".
func ObjectName(now time.Time, filename string) string {
	base := filepath.Base(filepath.ToSlash(filename))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), unsafeChars.ReplaceAllString(base, "_"))
}
