package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

const blobKeyPrefix = "uploads/"

// BlobStore writes uploads to any gocloud.dev bucket (s3://, gs://, azblob://, file://, mem://).
type BlobStore struct {
	bucket        *blob.Bucket
	publicBaseURL string
	signedURLTTL  time.Duration
	now           func() time.Time
}

func OpenBlobStore(ctx context.Context, bucketURL, publicBaseURL string, signedURLTTL time.Duration) (*BlobStore, error) {
	bk, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return NewBlobStore(bk, publicBaseURL, signedURLTTL), nil
}

func NewBlobStore(bk *blob.Bucket, publicBaseURL string, signedURLTTL time.Duration) *BlobStore {
	if signedURLTTL <= 0 {
		signedURLTTL = 7 * 24 * time.Hour
	}
	return &BlobStore{
		bucket:        bk,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		signedURLTTL:  signedURLTTL,
		now:           time.Now,
	}
}

func (s *BlobStore) Backend() string { return "blob" }

func (s *BlobStore) Save(ctx context.Context, filename string, r io.Reader, contentType string) (string, error) {
	key := blobKeyPrefix + ObjectName(s.now(), filename)

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("open writer: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("commit object: %w", err)
	}

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}
	return s.bucket.SignedURL(ctx, key, &blob.SignedURLOptions{Method: http.MethodGet, Expiry: s.signedURLTTL})
}

func (s *BlobStore) Close() error {
	return s.bucket.Close()
}
