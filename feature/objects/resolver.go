package objects

import (
	"context"
	"fmt"
	"time"

	"livelist/core/storage"

	"github.com/minio/minio-go/v7"
)

// Entry is the materialized form of a key.
type Entry struct {
	Key          string    `json:"key"`
	Exists       bool      `json:"exists"`
	Size         int64     `json:"size,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
}

// KeyEntry materializes a key without looking it up.
func KeyEntry(key string) (Entry, error) {
	return Entry{Key: key}, nil
}

// StatResolver materializes keys through StatObject.
type StatResolver struct {
	client  storage.Client
	bucket  string
	timeout time.Duration
}

// NewStatResolver creates a resolver; a non-positive timeout means 5 seconds.
func NewStatResolver(client storage.Client, bucket string, timeout time.Duration) *StatResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &StatResolver{client: client, bucket: bucket, timeout: timeout}
}

// Resolve stats key. A missing object is an Entry with Exists unset, not an error.
func (r *StatResolver) Resolve(key string) (Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	info, err := r.client.StatObject(ctx, r.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return Entry{Key: key}, nil
		}
		return Entry{}, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return Entry{
		Key:          key,
		Exists:       true,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}
