// Package storage handles the uploaded report and comment photos: write-
// once JPEG blobs under the images/ namespace, resolved to fetchable URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"taller/errs"
)

const imagePrefix = "images/"

// ImageStore wraps the object-storage bucket holding uploaded photos.
type ImageStore struct {
	client *gcs.Client
	bucket string
}

// NewImageStore opens the bucket.
func NewImageStore(ctx context.Context, bucket, credentialsPath string) (*ImageStore, error) {
	client, err := gcs.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing storage client: %w", err)
	}
	log.Printf("✅ Connected to storage bucket: %s", bucket)
	return &ImageStore{client: client, bucket: bucket}, nil
}

// Close closes the storage client.
func (s *ImageStore) Close() error {
	return s.client.Close()
}

// ObjectKey derives the write-once object name for an upload. The card
// number disambiguates visually; the timestamp guarantees uniqueness.
func ObjectKey(noCard string, now time.Time) string {
	return fmt.Sprintf("%s%s_%d.jpg", imagePrefix, noCard, now.UnixNano())
}

// Upload writes the blob and returns its fetchable URL.
func (s *ImageStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w: %v", key, errs.ErrTransient, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w: %v", key, errs.ErrTransient, err)
	}
	return s.URL(key), nil
}

// URL resolves an object key to its fetchable URL.
func (s *ImageStore) URL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}

// DeleteByURL deletes the blob a stored URL points at. Unknown or foreign
// URLs are ignored; a blob already gone is not an error (deletes are
// idempotent).
func (s *ImageStore) DeleteByURL(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		log.Printf("Warning: not a bucket URL, skipping delete: %s", url)
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w: %v", key, errs.ErrTransient, err)
	}
	return nil
}

func (s *ImageStore) keyFromURL(url string) (string, bool) {
	prefix := fmt.Sprintf("https://storage.googleapis.com/%s/", s.bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
