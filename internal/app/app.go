package app

import (
	"context"
	"fmt"
	"time"

	"backup-archiver/internal/config"
	"backup-archiver/internal/journal"
	"backup-archiver/internal/metrics"
	"backup-archiver/internal/mover"
	"backup-archiver/internal/retention"
	"backup-archiver/internal/storage"
	"backup-archiver/internal/summary"
	"backup-archiver/internal/worker"

	"go.uber.org/zap"
)

// Archiver coordinates one archival run: backup groups are processed
// sequentially in their configured order, servers within a group
// concurrently.
type Archiver struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  storage.Client
	journal journal.Store
	metrics *metrics.Collector
	summary *summary.RunSummary
}

// New creates an archiver with a live storage client and, when
// configured, a sqlite outcome journal.
func New(cfg *config.Config, logger *zap.Logger) (*Archiver, error) {
	client, err := storage.NewMinIOClient(storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Secure:    cfg.Storage.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	var journalStore journal.Store = journal.Nop{}
	if cfg.Journal != "" {
		journalStore, err = journal.NewSQLiteStore(cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
	}

	return newArchiver(cfg, logger, client, journalStore, metrics.New()), nil
}

// newArchiver wires an archiver from its collaborators. Tests inject a
// fake client here.
func newArchiver(cfg *config.Config, logger *zap.Logger, client storage.Client, journalStore journal.Store, collector *metrics.Collector) *Archiver {
	return &Archiver{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		journal: journalStore,
		metrics: collector,
		summary: summary.New(),
	}
}

// Run executes the archival process across all configured backup groups.
func (a *Archiver) Run(ctx context.Context) error {
	a.logger.Info("Starting backup archival",
		zap.Int("retention_days", a.cfg.RetentionDays),
		zap.Int("max_workers", a.cfg.MaxWorkers),
		zap.Bool("dry_run", a.cfg.DryRun),
		zap.Int("groups", len(a.cfg.Databases)),
	)

	if a.cfg.MetricsListen != "" {
		go func() {
			if err := a.metrics.StartServer(a.cfg.MetricsListen); err != nil {
				a.logger.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	// Every eligibility decision in the run is anchored to one instant.
	now := time.Now().UTC()
	if err := a.run(ctx, now); err != nil {
		return err
	}

	total := a.summary.Total()
	a.logger.Info("Archive process complete",
		zap.String("action", a.actionWord()),
		zap.Int64("total_moved", total.Moved),
		zap.Int64("total_processed", total.Processed),
		zap.Int64("total_failed", total.Failed),
	)
	return nil
}

func (a *Archiver) run(ctx context.Context, now time.Time) error {
	policy := retention.Policy{Days: a.cfg.RetentionDays}

	for _, group := range a.cfg.Databases {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.logger.Info("Processing backups", zap.String("group", group.Name))

		mv := mover.New(a.client, a.cfg.Storage.SourceBucket, a.cfg.Storage.TargetBucket, a.cfg.DryRun, a.logger)
		processor := worker.NewProcessor(
			a.client,
			a.cfg.Storage.SourceBucket,
			mv,
			policy,
			now,
			a.cfg.DryRun,
			a.journal,
			a.metrics,
			a.logger,
		)
		pool := worker.NewPool(a.cfg.MaxWorkers, processor, a.logger)

		counts := pool.ProcessGroup(ctx, group)
		a.summary.Add(group.Name, counts)

		a.logger.Info("Group archival complete",
			zap.String("group", group.Name),
			zap.String("action", a.actionWord()),
			zap.Int64("moved", counts.Moved),
			zap.Int64("processed", counts.Processed),
			zap.Int64("failed", counts.Failed),
		)
	}

	return nil
}

func (a *Archiver) actionWord() string {
	if a.cfg.DryRun {
		return "would move"
	}
	return "moved"
}

// Summary returns the accumulated run totals.
func (a *Archiver) Summary() *summary.RunSummary {
	return a.summary
}

// Close cleans up resources
func (a *Archiver) Close() error {
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}
