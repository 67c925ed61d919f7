package app

import (
	"context"
	"reflect"
	"testing"
	"time"

	"backup-archiver/internal/config"
	"backup-archiver/internal/journal"
	"backup-archiver/internal/metrics"
	"backup-archiver/internal/storage/storagetest"
	"backup-archiver/internal/summary"

	"go.uber.org/zap"
)

func testConfig(dryRun bool) *config.Config {
	return &config.Config{
		Storage: config.Storage{
			Endpoint:     "minio.internal:9000",
			AccessKey:    "key",
			SecretKey:    "secret",
			SourceBucket: "hot-backups",
			TargetBucket: "cold-archive",
		},
		RetentionDays: 30,
		MaxWorkers:    4,
		DryRun:        dryRun,
		Databases: []config.Group{
			{
				Name:          "postgres",
				SourcePath:    "backups/pg",
				TargetPath:    "archive/pg",
				FileExtension: ".sql.gz",
				Servers:       []string{"db1", "db2"},
			},
			{
				Name:          "mysql",
				SourcePath:    "backups/mysql",
				TargetPath:    "archive/mysql",
				FileExtension: ".sql.gz",
				Servers:       []string{"db3"},
			},
		},
	}
}

func seedFake() *storagetest.Fake {
	fake := storagetest.NewFake()
	fake.Put("hot-backups", "backups/pg/db1/2024-01-15_dump.sql.gz", storagetest.Object{Size: 100, ETag: "a"})
	fake.Put("hot-backups", "backups/pg/db2/2024-01-20_dump.sql.gz", storagetest.Object{Size: 100, ETag: "b"})
	fake.Put("hot-backups", "backups/pg/db2/2024-02-25_dump.sql.gz", storagetest.Object{Size: 100, ETag: "c"})
	fake.Put("hot-backups", "backups/mysql/db3/2024-01-01_dump.sql.gz", storagetest.Object{Size: 100, ETag: "d"})
	return fake
}

var fixedNow = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestRunArchivesAllGroups(t *testing.T) {
	fake := seedFake()
	archiver := newArchiver(testConfig(false), zap.NewNop(), fake, journal.Nop{}, metrics.New())

	if err := archiver.run(context.Background(), fixedNow); err != nil {
		t.Fatalf("run: %v", err)
	}

	total := archiver.Summary().Total()
	want := summary.GroupCounts{Processed: 4, Moved: 3, Failed: 0}
	if total != want {
		t.Errorf("total = %+v, want %+v", total, want)
	}

	// Groups are reported in declared order.
	if got := archiver.Summary().Groups(); !reflect.DeepEqual(got, []string{"postgres", "mysql"}) {
		t.Errorf("group order = %v, want [postgres mysql]", got)
	}
	if pg := archiver.Summary().Group("postgres"); pg.Moved != 2 {
		t.Errorf("postgres moved = %d, want 2", pg.Moved)
	}
	if my := archiver.Summary().Group("mysql"); my.Moved != 1 {
		t.Errorf("mysql moved = %d, want 1", my.Moved)
	}

	wantCold := []string{
		"archive/mysql/db3/2024-01-01_dump.sql.gz",
		"archive/pg/db1/2024-01-15_dump.sql.gz",
		"archive/pg/db2/2024-01-20_dump.sql.gz",
	}
	if got := fake.Keys("cold-archive"); !reflect.DeepEqual(got, wantCold) {
		t.Errorf("cold bucket = %v, want %v", got, wantCold)
	}
	if got := fake.Keys("hot-backups"); !reflect.DeepEqual(got, []string{"backups/pg/db2/2024-02-25_dump.sql.gz"}) {
		t.Errorf("hot bucket = %v, want only the recent db2 backup", got)
	}
}

func TestRunDryRunLeavesStateUntouched(t *testing.T) {
	fake := seedFake()
	archiver := newArchiver(testConfig(true), zap.NewNop(), fake, journal.Nop{}, metrics.New())

	if err := archiver.run(context.Background(), fixedNow); err != nil {
		t.Fatalf("run: %v", err)
	}

	total := archiver.Summary().Total()
	if total.Moved != 3 {
		t.Errorf("dry-run would-move total = %d, want 3", total.Moved)
	}
	if got := len(fake.Keys("hot-backups")); got != 4 {
		t.Errorf("hot bucket has %d objects after dry-run, want 4", got)
	}
	if got := len(fake.Keys("cold-archive")); got != 0 {
		t.Errorf("cold bucket has %d objects after dry-run, want 0", got)
	}
}

func TestRunStopsBetweenGroupsOnCancel(t *testing.T) {
	fake := seedFake()
	archiver := newArchiver(testConfig(false), zap.NewNop(), fake, journal.Nop{}, metrics.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := archiver.run(ctx, fixedNow); err == nil {
		t.Fatal("run with a cancelled context should return its error")
	}
	if got := len(fake.Keys("cold-archive")); got != 0 {
		t.Errorf("cold bucket has %d objects, want 0 when cancelled before any group", got)
	}
}
