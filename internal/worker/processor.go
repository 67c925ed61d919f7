package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backup-archiver/internal/config"
	"backup-archiver/internal/journal"
	"backup-archiver/internal/metrics"
	"backup-archiver/internal/mover"
	"backup-archiver/internal/naming"
	"backup-archiver/internal/retention"
	"backup-archiver/internal/storage"
	"backup-archiver/internal/summary"

	"go.uber.org/zap"
)

// Processor handles one server's enumeration and archival.
type Processor struct {
	client       storage.Client
	sourceBucket string
	mover        *mover.Mover
	policy       retention.Policy
	now          time.Time
	dryRun       bool
	journal      journal.Store
	metrics      *metrics.Collector
	logger       *zap.Logger
}

// NewProcessor creates a processor. now anchors all eligibility decisions
// so every object in the run is judged against the same instant.
func NewProcessor(
	client storage.Client,
	sourceBucket string,
	mv *mover.Mover,
	policy retention.Policy,
	now time.Time,
	dryRun bool,
	journalStore journal.Store,
	metricsCollector *metrics.Collector,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		client:       client,
		sourceBucket: sourceBucket,
		mover:        mv,
		policy:       policy,
		now:          now,
		dryRun:       dryRun,
		journal:      journalStore,
		metrics:      metricsCollector,
		logger:       logger,
	}
}

// ProcessServer lists all objects under {source_path}/{server}/ and runs
// each candidate through the extension filter, date parse, eligibility
// check and transfer. Per-object failures are counted, never returned;
// the error return is reserved for whole-task failures such as a listing
// error.
func (p *Processor) ProcessServer(ctx context.Context, task Task) (summary.GroupCounts, error) {
	group := task.Group
	prefix := serverPrefix(group.SourcePath, task.Server)

	var counts summary.GroupCounts
	objCh, errCh := p.client.ListObjects(ctx, p.sourceBucket, prefix)

	for {
		select {
		case obj, ok := <-objCh:
			if !ok {
				// The listing goroutine closes objCh after a pending
				// error, so drain errCh before declaring success.
				select {
				case err := <-errCh:
					if err != nil {
						return counts, fmt.Errorf("failed to list %s/%s: %w", p.sourceBucket, prefix, err)
					}
				default:
				}
				return counts, nil
			}

			p.processObject(ctx, group, task.Server, obj, &counts)

		case err := <-errCh:
			if err != nil {
				return counts, fmt.Errorf("failed to list %s/%s: %w", p.sourceBucket, prefix, err)
			}

		case <-ctx.Done():
			return counts, ctx.Err()
		}
	}
}

func (p *Processor) processObject(ctx context.Context, group config.Group, server string, obj storage.ObjectInfo, counts *summary.GroupCounts) {
	if !strings.HasSuffix(obj.Key, group.FileExtension) {
		p.logger.Debug("Skipping object",
			zap.String("key", obj.Key),
			zap.String("reason", mover.ReasonExtension),
		)
		return
	}

	counts.Processed++

	backupDate, ok := naming.ParseBackupDate(obj.Key)
	if !ok {
		p.logger.Warn("Could not extract date from object name",
			zap.String("key", obj.Key),
			zap.String("reason", mover.ReasonUndated),
		)
		p.metrics.IncSkipped()
		return
	}

	if !p.policy.EligibleAt(backupDate, p.now) {
		p.logger.Debug("Skipping object",
			zap.String("key", obj.Key),
			zap.String("reason", mover.ReasonNotEligible),
			zap.Time("backup_date", backupDate),
		)
		p.metrics.IncSkipped()
		return
	}

	targetKey := naming.TargetKey(group.SourcePath, group.TargetPath, obj.Key)

	start := time.Now()
	outcome := p.mover.Move(ctx, obj, targetKey)
	p.metrics.ObserveDuration(time.Since(start))

	switch outcome.Status {
	case mover.StatusMoved:
		counts.Moved++
		p.metrics.IncMoved(obj.Size)
		p.appendJournal(group.Name, server, obj, targetKey, journal.StatusMoved, "")

	case mover.StatusFailed:
		counts.Failed++
		p.metrics.IncFailed()
		p.logger.Error("Failed to archive object",
			zap.String("server", server),
			zap.String("key", obj.Key),
			zap.Error(outcome.Err),
		)
		p.appendJournal(group.Name, server, obj, targetKey, journal.StatusFailed, outcome.Err.Error())
	}
}

func (p *Processor) appendJournal(group, server string, obj storage.ObjectInfo, targetKey string, status journal.Status, detail string) {
	record := &journal.Record{
		Group:     group,
		Server:    server,
		SourceKey: obj.Key,
		TargetKey: targetKey,
		Size:      obj.Size,
		Status:    status,
		Detail:    detail,
		DryRun:    p.dryRun,
	}
	if err := p.journal.Append(record); err != nil {
		p.logger.Error("Failed to journal outcome",
			zap.String("key", obj.Key),
			zap.Error(err),
		)
	}
}

// serverPrefix builds the listing prefix for one server. The trailing
// slash keeps "db1" from matching "db10".
func serverPrefix(sourcePath, server string) string {
	return strings.TrimSuffix(sourcePath, "/") + "/" + server + "/"
}
