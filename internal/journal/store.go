package journal

import (
	"time"
)

// Status is the terminal state of one object's archival attempt.
type Status string

const (
	StatusMoved  Status = "moved"
	StatusFailed Status = "failed"
)

// Record is one journal entry: a single object's archival outcome.
type Record struct {
	Group     string    `json:"group"`
	Server    string    `json:"server"`
	SourceKey string    `json:"source_key"`
	TargetKey string    `json:"target_key"`
	Size      int64     `json:"size"`
	Status    Status    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	DryRun    bool      `json:"dry_run"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for the outcome journal. The journal is an
// append-only audit trail; it is never consulted to decide what to
// archive.
type Store interface {
	Append(record *Record) error
	ListFailed() ([]*Record, error)
	Close() error
}

// Nop is a Store that records nothing, used when journaling is disabled.
type Nop struct{}

func (Nop) Append(*Record) error           { return nil }
func (Nop) ListFailed() ([]*Record, error) { return nil, nil }
func (Nop) Close() error                   { return nil }
