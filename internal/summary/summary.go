// Package summary accumulates run totals as concurrent tasks report in.
package summary

import "sync"

// GroupCounts holds the totals for one backup group.
type GroupCounts struct {
	Processed int64 // objects that passed the extension filter
	Moved     int64 // objects moved (or that would move, in dry-run)
	Failed    int64 // objects whose transfer failed
}

// RunSummary aggregates per-group and overall counts. Safe for concurrent
// use; task results arrive in completion order.
type RunSummary struct {
	mu     sync.Mutex
	groups map[string]GroupCounts
	order  []string
	total  GroupCounts
}

// New creates an empty summary.
func New() *RunSummary {
	return &RunSummary{groups: make(map[string]GroupCounts)}
}

// Add folds one result into a group's counts and the grand total.
func (s *RunSummary) Add(group string, counts GroupCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group]; !ok {
		s.order = append(s.order, group)
	}
	g := s.groups[group]
	g.Processed += counts.Processed
	g.Moved += counts.Moved
	g.Failed += counts.Failed
	s.groups[group] = g

	s.total.Processed += counts.Processed
	s.total.Moved += counts.Moved
	s.total.Failed += counts.Failed
}

// Group returns the accumulated counts for one group.
func (s *RunSummary) Group(name string) GroupCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups[name]
}

// Groups returns group names in first-seen order.
func (s *RunSummary) Groups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Total returns the grand total across all groups.
func (s *RunSummary) Total() GroupCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
