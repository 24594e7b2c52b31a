package calendar

import (
	"testing"
	"time"
)

func at(day time.Time, h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestMerge_CoalescesOverlappingAndTouching(t *testing.T) {
	in := []Interval{
		{Start: at(day, 13, 0), End: at(day, 14, 0)},
		{Start: at(day, 9, 0), End: at(day, 10, 0)},
		{Start: at(day, 10, 0), End: at(day, 11, 0)},
		{Start: at(day, 9, 30), End: at(day, 9, 45)},
		{Start: at(day, 12, 0), End: at(day, 12, 0)}, // zero-length, dropped
	}
	out := Merge(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %v", len(out), out)
	}
	if !out[0].Start.Equal(at(day, 9, 0)) || !out[0].End.Equal(at(day, 11, 0)) {
		t.Fatalf("unexpected first interval: %v", out[0])
	}
	if !out[1].Start.Equal(at(day, 13, 0)) || !out[1].End.Equal(at(day, 14, 0)) {
		t.Fatalf("unexpected second interval: %v", out[1])
	}
}

func TestSubtract_SplitsAroundCut(t *testing.T) {
	base := Interval{Start: at(day, 9, 0), End: at(day, 17, 0)}
	cuts := []Interval{{Start: at(day, 12, 0), End: at(day, 13, 0)}}

	out := Subtract(base, cuts)
	if len(out) != 2 {
		t.Fatalf("expected 2 pieces, got %d: %v", len(out), out)
	}
	if !out[0].End.Equal(at(day, 12, 0)) || !out[1].Start.Equal(at(day, 13, 0)) {
		t.Fatalf("unexpected pieces: %v", out)
	}
}

func TestSubtract_CutCoversBase(t *testing.T) {
	base := Interval{Start: at(day, 9, 0), End: at(day, 10, 0)}
	cuts := []Interval{{Start: at(day, 8, 0), End: at(day, 11, 0)}}
	if out := Subtract(base, cuts); len(out) != 0 {
		t.Fatalf("expected no pieces, got %v", out)
	}
}

func TestSubtract_DisjointCutLeavesBase(t *testing.T) {
	base := Interval{Start: at(day, 9, 0), End: at(day, 10, 0)}
	cuts := []Interval{{Start: at(day, 14, 0), End: at(day, 15, 0)}}
	out := Subtract(base, cuts)
	if len(out) != 1 || !out[0].Start.Equal(base.Start) || !out[0].End.Equal(base.End) {
		t.Fatalf("expected base unchanged, got %v", out)
	}
}

func TestIntersect(t *testing.T) {
	a := []Interval{
		{Start: at(day, 9, 0), End: at(day, 12, 0)},
		{Start: at(day, 14, 0), End: at(day, 16, 0)},
	}
	b := []Interval{
		{Start: at(day, 11, 0), End: at(day, 15, 0)},
	}
	out := Intersect(a, b)
	if len(out) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %v", len(out), out)
	}
	if !out[0].Start.Equal(at(day, 11, 0)) || !out[0].End.Equal(at(day, 12, 0)) {
		t.Fatalf("unexpected first intersection: %v", out[0])
	}
	if !out[1].Start.Equal(at(day, 14, 0)) || !out[1].End.Equal(at(day, 15, 0)) {
		t.Fatalf("unexpected second intersection: %v", out[1])
	}
}

func TestContains_HalfOpen(t *testing.T) {
	iv := Interval{Start: at(day, 9, 0), End: at(day, 10, 0)}
	if !iv.Contains(at(day, 9, 0), at(day, 10, 0)) {
		t.Fatal("interval should contain itself")
	}
	if iv.Contains(at(day, 9, 30), at(day, 10, 1)) {
		t.Fatal("end past bound should not be contained")
	}
	if iv.Contains(at(day, 9, 0), at(day, 9, 0)) {
		t.Fatal("zero-length range should not be contained")
	}
}

func TestOverlaps_HalfOpenBoundary(t *testing.T) {
	// Back-to-back intervals share an instant but do not overlap.
	if Overlaps(at(day, 9, 0), at(day, 10, 0), at(day, 10, 0), at(day, 11, 0)) {
		t.Fatal("touching intervals should not overlap")
	}
	if !Overlaps(at(day, 9, 0), at(day, 10, 0), at(day, 9, 59), at(day, 11, 0)) {
		t.Fatal("expected overlap")
	}
}

func TestSlotStarts_FitsBlockBeforeWindowEnd(t *testing.T) {
	win := Interval{Start: at(day, 9, 0), End: at(day, 10, 0)}
	starts := SlotStarts(win, 30*time.Minute, 15*time.Minute, time.Time{})
	// 09:45 would end 10:15, past the window.
	want := []time.Time{at(day, 9, 0), at(day, 9, 15), at(day, 9, 30)}
	if len(starts) != len(want) {
		t.Fatalf("expected %d starts, got %d: %v", len(want), len(starts), starts)
	}
	for i := range want {
		if !starts[i].Equal(want[i]) {
			t.Fatalf("start %d: expected %s, got %s", i, want[i], starts[i])
		}
	}
}

func TestSlotStarts_SkipsPast(t *testing.T) {
	win := Interval{Start: at(day, 9, 0), End: at(day, 10, 0)}
	now := at(day, 9, 16)
	starts := SlotStarts(win, 15*time.Minute, 15*time.Minute, now)
	if len(starts) != 2 {
		t.Fatalf("expected 2 starts, got %d: %v", len(starts), starts)
	}
	if !starts[0].Equal(at(day, 9, 30)) {
		t.Fatalf("expected first start 09:30, got %s", starts[0])
	}
}

func TestSlotStarts_BlockLargerThanWindow(t *testing.T) {
	win := Interval{Start: at(day, 9, 0), End: at(day, 9, 20)}
	if starts := SlotStarts(win, 30*time.Minute, 15*time.Minute, time.Time{}); starts != nil {
		t.Fatalf("expected no starts, got %v", starts)
	}
}
