package storage

import (
	"context"
	"time"
)

// Client defines the interface for S3-compatible storage operations.
// Only the capabilities the archival flow needs are exposed: listing by
// prefix, server-side copy into another bucket, metadata/existence probes,
// and deletion.
type Client interface {
	ListObjects(ctx context.Context, bucket, prefix string) (<-chan ObjectInfo, <-chan error)
	CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, key string) error
}

// ObjectInfo contains object metadata. ETag doubles as the content
// checksum when the backend provides one.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Config contains client configuration.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}
