// Package retention decides whether a backup is old enough to archive.
package retention

import "time"

// Policy holds the archival age threshold.
type Policy struct {
	Days int
}

// EligibleAt reports whether a backup dated backupDate should be archived
// as of now. The comparison uses calendar-day difference in UTC rather
// than wall-clock duration, so the result does not drift with timezones
// or DST. A backup exactly Days old is eligible.
func (p Policy) EligibleAt(backupDate, now time.Time) bool {
	age := midnightUTC(now).Sub(midnightUTC(backupDate))
	return int(age.Hours()/24) >= p.Days
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
