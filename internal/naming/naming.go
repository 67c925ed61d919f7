// Package naming implements the backup naming convention: object basenames
// carry their backup date as a YYYY-MM-DD prefix terminated by an
// underscore, e.g. "backups/pg/db1/2024-01-15_dump.sql.gz".
package naming

import (
	"strings"
	"time"
)

// DateLayout is the fixed calendar-date form embedded in backup names.
const DateLayout = "2006-01-02"

// dateSeparator terminates the date prefix in a basename.
const dateSeparator = "_"

// ParseBackupDate extracts the backup date from an object key. It operates
// on the final path segment only and parses the substring before the first
// underscore strictly as YYYY-MM-DD. Malformed input never fails the
// caller: ok is false and the caller treats the object as undatable.
func ParseBackupDate(key string) (time.Time, bool) {
	base := key
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}

	datePart, _, _ := strings.Cut(base, dateSeparator)
	t, err := time.Parse(DateLayout, datePart)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TargetKey computes the destination key for an object, replacing the
// leading sourcePrefix path segments with targetPrefix and preserving any
// structure beneath the prefix verbatim. The replacement is segment-wise,
// so a prefix that happens to be a substring of an unrelated segment
// ("backups/pg" vs "backups/pgx/...") never matches. If the key does not
// start with sourcePrefix, the whole key is placed under targetPrefix.
func TargetKey(sourcePrefix, targetPrefix, key string) string {
	keySegs := splitSegments(key)
	srcSegs := splitSegments(sourcePrefix)
	dstSegs := splitSegments(targetPrefix)

	if hasSegmentPrefix(keySegs, srcSegs) {
		return joinSegments(dstSegs, keySegs[len(srcSegs):])
	}
	return joinSegments(dstSegs, keySegs)
}

// splitSegments splits a slash-delimited key into its non-empty components.
func splitSegments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func hasSegmentPrefix(segs, prefix []string) bool {
	if len(segs) < len(prefix) {
		return false
	}
	for i, s := range prefix {
		if segs[i] != s {
			return false
		}
	}
	return true
}

func joinSegments(head, tail []string) string {
	all := make([]string, 0, len(head)+len(tail))
	all = append(all, head...)
	all = append(all, tail...)
	return strings.Join(all, "/")
}
