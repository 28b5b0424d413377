package repository

import (
	"sort"
	"testing"
	"time"
)

func TestSortKeyFastestFirst(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	fast := SortKey(180.25, at, 1)
	slow := SortKey(240.90, at, 2)
	if fast >= slow {
		t.Fatalf("faster average must sort before slower: %q vs %q", fast, slow)
	}
}

func TestSortKeyTieBrokenByTimestamp(t *testing.T) {
	early := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	late := early.Add(time.Millisecond)

	first := SortKey(200.00, early, 5)
	second := SortKey(200.00, late, 1)
	if first >= second {
		t.Fatalf("earlier submission must win the tie: %q vs %q", first, second)
	}
}

func TestSortKeyTieBrokenBySequence(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	a := SortKey(200.00, at, 10)
	b := SortKey(200.00, at, 11)
	if a >= b {
		t.Fatalf("equal score and timestamp must fall back to insertion order: %q vs %q", a, b)
	}
}

func TestSortKeyFixedWidth(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	keys := []string{
		SortKey(100.00, at, 0),
		SortKey(9999.95, at, 99_999_999),
		SortKey(212.35, at.Add(time.Hour), 7),
	}
	want := len(keys[0])
	for _, k := range keys {
		if len(k) != want {
			t.Fatalf("keys must share a fixed width, got %d and %d", want, len(k))
		}
	}
}

func TestSortKeyGridNeighborsDistinct(t *testing.T) {
	// Adjacent values on the 0.05 ms rounding grid must map to distinct,
	// correctly ordered fixed-point scores.
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	a := SortKey(199.95, at, 1)
	b := SortKey(200.00, at, 1)
	c := SortKey(200.05, at, 1)
	if !(a < b && b < c) {
		t.Fatalf("grid neighbors out of order: %q %q %q", a, b, c)
	}
}

func TestSortKeyLexicographicMatchesSemantic(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	type entry struct {
		avg float64
		at  time.Time
		seq uint64
	}
	entries := []entry{
		{310.40, base.Add(3 * time.Second), 4},
		{180.25, base.Add(9 * time.Second), 6},
		{180.25, base.Add(1 * time.Second), 2},
		{180.25, base.Add(1 * time.Second), 1},
		{9999.95, base, 0},
		{100.00, base.Add(time.Minute), 5},
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = SortKey(e.avg, e.at, e.seq)
	}
	sort.Strings(keys)

	want := []string{
		SortKey(100.00, base.Add(time.Minute), 5),
		SortKey(180.25, base.Add(1*time.Second), 1),
		SortKey(180.25, base.Add(1*time.Second), 2),
		SortKey(180.25, base.Add(9*time.Second), 6),
		SortKey(310.40, base.Add(3*time.Second), 4),
		SortKey(9999.95, base, 0),
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("position %d: got %q want %q", i, keys[i], want[i])
		}
	}
}

func TestDailyPartitionUsesUTCDay(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("EST", -5*3600)
	at := time.Date(2026, 3, 14, 23, 30, 0, 0, loc)

	if got := DailyPartition(at); got != "Daily-2026-03-15" {
		t.Fatalf("got %q, want Daily-2026-03-15", got)
	}
}

func TestIsDaily(t *testing.T) {
	day, ok := IsDaily("Daily-2026-03-14")
	if !ok {
		t.Fatal("expected daily partition to be recognized")
	}
	if !day.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("wrong day: %v", day)
	}

	if _, ok := IsDaily(PartitionAllTime); ok {
		t.Fatal("all-time partition must not parse as daily")
	}
	if _, ok := IsDaily("Daily-notadate"); ok {
		t.Fatal("malformed suffix must not parse as daily")
	}
}
