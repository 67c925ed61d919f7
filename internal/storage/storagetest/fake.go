// Package storagetest provides an in-memory storage.Client for tests.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"backup-archiver/internal/storage"
)

// Object is one stored fake object.
type Object struct {
	Size         int64
	ETag         string
	LastModified time.Time
}

// Fake is an in-memory storage.Client. All operations are safe for
// concurrent use. Error injection hooks allow tests to force failures on
// individual keys.
type Fake struct {
	mu      sync.Mutex
	buckets map[string]map[string]Object

	// Error injection, keyed by "bucket/key". Nil maps inject nothing.
	CopyErr   map[string]error
	StatErr   map[string]error
	RemoveErr map[string]error
	ListErr   map[string]error // keyed by "bucket/prefix"

	// CopyETag, when non-empty for a destination "bucket/key", overrides
	// the ETag recorded by CopyObject. Used to simulate checksum drift.
	CopyETag map[string]string
}

// NewFake returns an empty fake store.
func NewFake() *Fake {
	return &Fake{buckets: make(map[string]map[string]Object)}
}

func ref(bucket, key string) string { return bucket + "/" + key }

// Put stores an object directly, bypassing the Client interface.
func (f *Fake) Put(bucket, key string, obj Object) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buckets[bucket] == nil {
		f.buckets[bucket] = make(map[string]Object)
	}
	f.buckets[bucket][key] = obj
}

// Has reports whether an object exists.
func (f *Fake) Has(bucket, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.buckets[bucket][key]
	return ok
}

// Keys returns the sorted keys of a bucket.
func (f *Fake) Keys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ListObjects implements storage.Client.
func (f *Fake) ListObjects(ctx context.Context, bucket, prefix string) (<-chan storage.ObjectInfo, <-chan error) {
	objCh := make(chan storage.ObjectInfo)
	errCh := make(chan error, 1)

	f.mu.Lock()
	if err := f.ListErr[ref(bucket, prefix)]; err != nil {
		f.mu.Unlock()
		go func() {
			errCh <- err
			close(objCh)
			close(errCh)
		}()
		return objCh, errCh
	}
	var infos []storage.ObjectInfo
	for k, o := range f.buckets[bucket] {
		if strings.HasPrefix(k, prefix) {
			infos = append(infos, storage.ObjectInfo{
				Key:          k,
				Size:         o.Size,
				ETag:         o.ETag,
				LastModified: o.LastModified,
			})
		}
	}
	f.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	go func() {
		defer close(objCh)
		defer close(errCh)
		for _, info := range infos {
			select {
			case objCh <- info:
			case <-ctx.Done():
				return
			}
		}
	}()

	return objCh, errCh
}

// CopyObject implements storage.Client.
func (f *Fake) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.CopyErr[ref(srcBucket, srcKey)]; err != nil {
		return err
	}
	src, ok := f.buckets[srcBucket][srcKey]
	if !ok {
		return fmt.Errorf("copy %s/%s: %w", srcBucket, srcKey, storage.ErrNotFound)
	}
	dst := src
	dst.LastModified = time.Now()
	if etag := f.CopyETag[ref(dstBucket, dstKey)]; etag != "" {
		dst.ETag = etag
	}
	if f.buckets[dstBucket] == nil {
		f.buckets[dstBucket] = make(map[string]Object)
	}
	f.buckets[dstBucket][dstKey] = dst
	return nil
}

// StatObject implements storage.Client.
func (f *Fake) StatObject(ctx context.Context, bucket, key string) (storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.StatErr[ref(bucket, key)]; err != nil {
		return storage.ObjectInfo{}, err
	}
	obj, ok := f.buckets[bucket][key]
	if !ok {
		return storage.ObjectInfo{}, fmt.Errorf("stat %s/%s: %w", bucket, key, storage.ErrNotFound)
	}
	return storage.ObjectInfo{
		Key:          key,
		Size:         obj.Size,
		ETag:         obj.ETag,
		LastModified: obj.LastModified,
	}, nil
}

// RemoveObject implements storage.Client.
func (f *Fake) RemoveObject(ctx context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.RemoveErr[ref(bucket, key)]; err != nil {
		return err
	}
	if _, ok := f.buckets[bucket][key]; !ok {
		return fmt.Errorf("remove %s/%s: %w", bucket, key, storage.ErrNotFound)
	}
	delete(f.buckets[bucket], key)
	return nil
}
