package output

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Count formats n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Ago formats t relative to now ("3 minutes ago"). The zero time renders as
// "unknown".
func Ago(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}

// Bytes formats a file size ("1.2 MB").
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
