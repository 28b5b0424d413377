package repository

import (
	"fmt"
	"math"
	"time"
)

// Partition names. Daily partitions carry a UTC calendar-day suffix.
const (
	PartitionAllTime = "AllTime"
	dailyPrefix      = "Daily-"
	dailyDateLayout  = "2006-01-02"
)

// keyPrecision scales milliseconds to integer ticks so the 0.05 ms
// rounding grid survives without floating error.
const keyPrecision = 10_000

// DailyPartition returns the daily partition name for t's UTC calendar day.
func DailyPartition(t time.Time) string {
	return dailyPrefix + t.UTC().Format(dailyDateLayout)
}

// IsDaily reports whether partition is a daily partition, returning its
// day when it is.
func IsDaily(partition string) (time.Time, bool) {
	if len(partition) <= len(dailyPrefix) || partition[:len(dailyPrefix)] != dailyPrefix {
		return time.Time{}, false
	}
	day, err := time.Parse(dailyDateLayout, partition[len(dailyPrefix):])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// SortKey derives the composite ordering key: the fixed-point average, the
// submission timestamp in nanosecond ticks, and a process-local insertion
// sequence number, each zero-padded to fixed width. Plain lexicographic
// ascending order over these keys yields fastest-average first, ties
// broken by earliest submission, then by insertion order. Any store that
// can do an ascending key-range scan reproduces the ranking without a
// custom comparator.
func SortKey(averageMs float64, submittedAt time.Time, seq uint64) string {
	scaled := int64(math.Round(averageMs * keyPrecision))
	return fmt.Sprintf("%010d-%019d-%08d", scaled, submittedAt.UTC().UnixNano(), seq)
}
