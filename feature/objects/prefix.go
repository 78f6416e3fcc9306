package objects

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"livelist/core/list"
	"livelist/core/storage"
	"livelist/core/stream"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PrefixList is the observable, sorted list of object keys under a prefix.
type PrefixList struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger

	group  singleflight.Group
	items  *stream.List[string]
	loaded atomic.Bool
	lists  atomic.Int64
}

// NewPrefixList creates an empty list. Nothing is listed until Refresh.
func NewPrefixList(client storage.Client, bucket, prefix string, logger *zap.Logger) *PrefixList {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrefixList{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With(zap.String("prefix", prefix)),
		items:  stream.NewList[string](),
	}
}

// Subscribe implements stream.Observable.
func (p *PrefixList) Subscribe(fn func(list.Update[string])) stream.Subscription {
	return p.items.Subscribe(fn)
}

// Prefix returns the listed prefix.
func (p *PrefixList) Prefix() string {
	return p.prefix
}

// Snapshot returns the keys of the last listing.
func (p *PrefixList) Snapshot() []string {
	return p.items.Snapshot()
}

// Len returns the number of keys of the last listing.
func (p *PrefixList) Len() int {
	return p.items.Len()
}

// Listings returns how many listings have been made.
func (p *PrefixList) Listings() int64 {
	return p.lists.Load()
}

// Refresh lists the prefix and publishes what changed. The first refresh
// publishes a Reloaded. Callers refreshing concurrently share one listing.
func (p *PrefixList) Refresh(ctx context.Context) error {
	_, err, shared := p.group.Do(p.prefix, func() (any, error) {
		keys, err := p.list(ctx)
		if err != nil {
			return nil, err
		}
		return nil, p.apply(keys)
	})
	if shared {
		p.logger.Debug("Joined in-flight listing")
	}
	return err
}

// Put uploads an empty object named key under the prefix and refreshes.
func (p *PrefixList) Put(ctx context.Context, key string) error {
	name := p.objectName(key)
	if _, err := p.client.PutObject(ctx, p.bucket, name, bytes.NewReader(nil), 0, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("failed to put %s: %w", name, err)
	}
	// An in-flight listing may predate the upload.
	p.group.Forget(p.prefix)
	return p.Refresh(ctx)
}

// Remove deletes the object at index of the last listing and refreshes.
func (p *PrefixList) Remove(ctx context.Context, index int) error {
	key, err := p.items.At(index)
	if err != nil {
		return err
	}
	if err := p.client.RemoveObject(ctx, p.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	p.group.Forget(p.prefix)
	return p.Refresh(ctx)
}

func (p *PrefixList) objectName(key string) string {
	if strings.HasPrefix(key, p.prefix) {
		return key
	}
	return p.prefix + key
}

func (p *PrefixList) list(ctx context.Context) ([]string, error) {
	p.lists.Add(1)
	var keys []string
	for obj := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{Prefix: p.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", p.prefix, obj.Err)
		}
		// Folder markers are not elements.
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

func (p *PrefixList) apply(keys []string) error {
	if !p.loaded.Load() {
		p.items.Replace(keys...)
		p.loaded.Store(true)
		p.logger.Debug("Prefix loaded", zap.Int("keys", len(keys)))
		return nil
	}
	return p.items.Patch(func(current []string) ([]string, []list.Change, error) {
		changes := Diff(current, keys)
		if len(changes) > 0 {
			p.logger.Debug("Prefix changed", zap.Int("keys", len(keys)), zap.Int("changes", len(changes)))
		}
		return keys, changes, nil
	})
}

// Diff returns the changes turning the sorted keys old into the sorted keys
// next: removals in descending order, then insertions in ascending order.
func Diff(old, next []string) []list.Change {
	var changes []list.Change
	for i := len(old) - 1; i >= 0; i-- {
		if _, found := slices.BinarySearch(next, old[i]); !found {
			changes = append(changes, list.Removed(i))
		}
	}
	for j, key := range next {
		if _, found := slices.BinarySearch(old, key); !found {
			changes = append(changes, list.Inserted(j))
		}
	}
	return changes
}
