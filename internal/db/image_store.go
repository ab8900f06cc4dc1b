package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"thumblytic-backend-go/internal/gemini"
)

const generationsPrefix = "generations"

// writeObjectFunc uploads data to path in the bucket.
type writeObjectFunc func(ctx context.Context, path, contentType string, data []byte) error

// BucketImageStore uploads rendered images to Cloud Storage and returns public object URLs.
type BucketImageStore struct {
	bucket string
	write  writeObjectFunc
	now    func() time.Time
}

// NewBucketImageStore creates an image store backed by handle, which must refer to bucketName.
func NewBucketImageStore(handle *storage.BucketHandle, bucketName string) *BucketImageStore {
	return &BucketImageStore{
		bucket: bucketName,
		now:    time.Now,
		write: func(ctx context.Context, path, contentType string, data []byte) error {
			w := handle.Object(path).NewWriter(ctx)
			w.ContentType = contentType
			w.CacheControl = "public, max-age=31536000"
			if _, err := w.Write(data); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
	}
}

// Store uploads img under generations/<user>/<yyyy>/<mm>/<uuid><ext>.
func (s *BucketImageStore) Store(ctx context.Context, userID string, img gemini.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("image store: empty image")
	}
	now := s.now().UTC()
	path := fmt.Sprintf("%s/%s/%04d/%02d/%s%s",
		generationsPrefix, url.PathEscape(userID), now.Year(), now.Month(), uuid.NewString(), img.Extension())
	if err := s.write(ctx, path, img.MIMEType, img.Data); err != nil {
		return "", fmt.Errorf("image store: upload %s: %w", path, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, path), nil
}
