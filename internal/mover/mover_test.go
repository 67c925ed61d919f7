package mover

import (
	"context"
	"errors"
	"testing"

	"backup-archiver/internal/storage"
	"backup-archiver/internal/storage/storagetest"

	"go.uber.org/zap"
)

const (
	hotBucket  = "hot-backups"
	coldBucket = "cold-archive"
	srcKey     = "backups/pg/db1/2024-01-15_dump.sql.gz"
	dstKey     = "archive/pg/db1/2024-01-15_dump.sql.gz"
)

func seededFake() (*storagetest.Fake, storage.ObjectInfo) {
	fake := storagetest.NewFake()
	fake.Put(hotBucket, srcKey, storagetest.Object{Size: 1024, ETag: "etag-1"})
	return fake, storage.ObjectInfo{Key: srcKey, Size: 1024, ETag: "etag-1"}
}

func TestMoveLiveRun(t *testing.T) {
	fake, obj := seededFake()
	m := New(fake, hotBucket, coldBucket, false, zap.NewNop())

	outcome := m.Move(context.Background(), obj, dstKey)

	if outcome.Status != StatusMoved {
		t.Fatalf("outcome = %+v, want moved", outcome)
	}
	if fake.Has(hotBucket, srcKey) {
		t.Error("source object should be deleted after a verified move")
	}
	if !fake.Has(coldBucket, dstKey) {
		t.Error("target object should exist after the move")
	}
}

func TestMoveDryRunHasNoSideEffects(t *testing.T) {
	fake, obj := seededFake()
	m := New(fake, hotBucket, coldBucket, true, zap.NewNop())

	for i := 0; i < 2; i++ {
		outcome := m.Move(context.Background(), obj, dstKey)
		if outcome.Status != StatusMoved {
			t.Fatalf("dry-run pass %d: outcome = %+v, want moved", i, outcome)
		}
	}

	if !fake.Has(hotBucket, srcKey) {
		t.Error("dry-run must not delete the source object")
	}
	if fake.Has(coldBucket, dstKey) {
		t.Error("dry-run must not create the target object")
	}
}

func TestMoveChecksumMismatchKeepsSource(t *testing.T) {
	fake, obj := seededFake()
	fake.CopyETag = map[string]string{coldBucket + "/" + dstKey: "etag-corrupt"}
	m := New(fake, hotBucket, coldBucket, false, zap.NewNop())

	outcome := m.Move(context.Background(), obj, dstKey)

	if outcome.Status != StatusFailed {
		t.Fatalf("outcome = %+v, want failed", outcome)
	}
	if !fake.Has(hotBucket, srcKey) {
		t.Error("source object must survive a checksum mismatch")
	}
}

func TestMoveSkipsChecksumWhenUnavailable(t *testing.T) {
	fake := storagetest.NewFake()
	fake.Put(hotBucket, srcKey, storagetest.Object{Size: 1024})
	obj := storage.ObjectInfo{Key: srcKey, Size: 1024}
	m := New(fake, hotBucket, coldBucket, false, zap.NewNop())

	if outcome := m.Move(context.Background(), obj, dstKey); outcome.Status != StatusMoved {
		t.Fatalf("outcome = %+v, want moved when no checksum is available", outcome)
	}
}

func TestMoveCopyErrorKeepsSource(t *testing.T) {
	fake, obj := seededFake()
	fake.CopyErr = map[string]error{hotBucket + "/" + srcKey: errors.New("connection reset")}
	m := New(fake, hotBucket, coldBucket, false, zap.NewNop())

	outcome := m.Move(context.Background(), obj, dstKey)

	if outcome.Status != StatusFailed {
		t.Fatalf("outcome = %+v, want failed", outcome)
	}
	if outcome.Err == nil {
		t.Error("failed outcome should carry the error detail")
	}
	if !fake.Has(hotBucket, srcKey) {
		t.Error("source object must survive a copy failure")
	}
}

func TestMoveVerifyErrorKeepsSource(t *testing.T) {
	fake, obj := seededFake()
	fake.StatErr = map[string]error{coldBucket + "/" + dstKey: errors.New("stat: service unavailable")}
	m := New(fake, hotBucket, coldBucket, false, zap.NewNop())

	outcome := m.Move(context.Background(), obj, dstKey)

	if outcome.Status != StatusFailed {
		t.Fatalf("outcome = %+v, want failed", outcome)
	}
	if !fake.Has(hotBucket, srcKey) {
		t.Error("source object must survive a failed verification")
	}
}

func TestMoveDeleteErrorReportsFailed(t *testing.T) {
	fake, obj := seededFake()
	fake.RemoveErr = map[string]error{hotBucket + "/" + srcKey: errors.New("access denied")}
	m := New(fake, hotBucket, coldBucket, false, zap.NewNop())

	outcome := m.Move(context.Background(), obj, dstKey)

	if outcome.Status != StatusFailed {
		t.Fatalf("outcome = %+v, want failed", outcome)
	}
	if !fake.Has(coldBucket, dstKey) {
		t.Error("target copy should remain after a delete failure")
	}
}

func TestMoveOverwritesExistingTarget(t *testing.T) {
	fake, obj := seededFake()
	fake.Put(coldBucket, dstKey, storagetest.Object{Size: 99, ETag: "etag-old"})
	m := New(fake, hotBucket, coldBucket, false, zap.NewNop())

	outcome := m.Move(context.Background(), obj, dstKey)

	if outcome.Status != StatusMoved {
		t.Fatalf("outcome = %+v, want moved over a pre-existing target", outcome)
	}
	if fake.Has(hotBucket, srcKey) {
		t.Error("source object should be deleted after overwriting the target")
	}
}
