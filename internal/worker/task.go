package worker

import (
	"backup-archiver/internal/config"
	"backup-archiver/internal/summary"
)

// Task is one unit of work: archive the aged backups of a single server
// within a backup group.
type Task struct {
	Group  config.Group
	Server string
}

// Result is one task's outcome. Err is set when the task failed as a
// whole (listing error, panic); its counts are then excluded from
// aggregation.
type Result struct {
	Group  string
	Server string
	Counts summary.GroupCounts
	Err    error
}
