// Package mover performs the archival transfer of a single object:
// copy to the archive bucket, verify, then delete the source.
package mover

import (
	"context"
	"fmt"

	"backup-archiver/internal/storage"

	"go.uber.org/zap"
)

// Mover moves objects from the source bucket to the target bucket.
type Mover struct {
	client       storage.Client
	sourceBucket string
	targetBucket string
	dryRun       bool
	logger       *zap.Logger
}

// New creates a mover bound to a source and target bucket.
func New(client storage.Client, sourceBucket, targetBucket string, dryRun bool, logger *zap.Logger) *Mover {
	return &Mover{
		client:       client,
		sourceBucket: sourceBucket,
		targetBucket: targetBucket,
		dryRun:       dryRun,
		logger:       logger,
	}
}

// Move archives one object under targetKey. In dry-run mode the intended
// action is logged and no storage call is made. In a live run the source
// is deleted only after the copy has been verified present and, when both
// sides report a checksum, checksum-equal. Every storage error is caught
// here and converted to a Failed outcome.
func (m *Mover) Move(ctx context.Context, obj storage.ObjectInfo, targetKey string) Outcome {
	if m.dryRun {
		m.logger.Info("Would move object",
			zap.String("source_key", obj.Key),
			zap.String("target_key", targetKey),
			zap.Int64("size", obj.Size),
		)
		return Moved()
	}

	// Overwriting a pre-existing target is permitted, but never silent.
	if _, err := m.client.StatObject(ctx, m.targetBucket, targetKey); err == nil {
		m.logger.Warn("Target object already exists and will be overwritten",
			zap.String("target_key", targetKey),
		)
	} else if !storage.IsNotFound(err) {
		m.logger.Debug("Target existence probe failed, proceeding with copy",
			zap.String("target_key", targetKey),
			zap.Error(err),
		)
	}

	if err := m.client.CopyObject(ctx, m.sourceBucket, obj.Key, m.targetBucket, targetKey); err != nil {
		return Failed(fmt.Errorf("copy to %s/%s: %w", m.targetBucket, targetKey, err))
	}

	copied, err := m.client.StatObject(ctx, m.targetBucket, targetKey)
	if err != nil {
		return Failed(fmt.Errorf("verify %s/%s after copy: %w", m.targetBucket, targetKey, err))
	}

	// Source deletion is strictly gated on a verified copy. On checksum
	// mismatch the source stays where it is.
	if obj.ETag != "" && copied.ETag != "" && obj.ETag != copied.ETag {
		m.logger.Warn("Checksum mismatch after copy, keeping source",
			zap.String("source_key", obj.Key),
			zap.String("source_etag", obj.ETag),
			zap.String("target_etag", copied.ETag),
		)
		return Failed(fmt.Errorf("checksum mismatch for %s: source %s, target %s", obj.Key, obj.ETag, copied.ETag))
	}

	if err := m.client.RemoveObject(ctx, m.sourceBucket, obj.Key); err != nil {
		return Failed(fmt.Errorf("delete source %s/%s: %w", m.sourceBucket, obj.Key, err))
	}

	m.logger.Info("Moved object",
		zap.String("source_key", obj.Key),
		zap.String("target_key", targetKey),
		zap.Int64("size", obj.Size),
	)
	return Moved()
}
