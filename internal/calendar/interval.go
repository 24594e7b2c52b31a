package calendar

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End). A zero-length interval
// overlaps nothing.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) IsZero() bool {
	return !iv.End.After(iv.Start)
}

func (iv Interval) Duration() time.Duration {
	if iv.IsZero() {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// Contains reports whether [start, end) lies entirely inside iv.
func (iv Interval) Contains(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}
	return !start.Before(iv.Start) && !end.After(iv.End)
}

// Overlaps is the half-open overlap test: aStart < bEnd && bStart < aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Clip returns iv clipped to bounds, or a zero interval if disjoint.
func Clip(iv, bounds Interval) Interval {
	out := iv
	if out.Start.Before(bounds.Start) {
		out.Start = bounds.Start
	}
	if out.End.After(bounds.End) {
		out.End = bounds.End
	}
	if out.IsZero() {
		return Interval{}
	}
	return out
}

// Merge sorts the input and coalesces overlapping or touching intervals.
// Zero-length inputs are dropped. The input slice is not modified.
func Merge(in []Interval) []Interval {
	var ivs []Interval
	for _, iv := range in {
		if !iv.IsZero() {
			ivs = append(ivs, iv)
		}
	}
	if len(ivs) == 0 {
		return nil
	}
	sort.Slice(ivs, func(i, j int) bool {
		if !ivs[i].Start.Equal(ivs[j].Start) {
			return ivs[i].Start.Before(ivs[j].Start)
		}
		return ivs[i].End.Before(ivs[j].End)
	})

	out := []Interval{ivs[0]}
	for _, cur := range ivs[1:] {
		last := &out[len(out)-1]
		if cur.Start.After(last.End) {
			out = append(out, cur)
			continue
		}
		if cur.End.After(last.End) {
			last.End = cur.End
		}
	}
	return out
}

// Subtract removes every cut from base, returning the remaining sorted,
// non-overlapping pieces.
func Subtract(base Interval, cuts []Interval) []Interval {
	if base.IsZero() {
		return nil
	}

	var clipped []Interval
	for _, c := range cuts {
		if c := Clip(c, base); !c.IsZero() {
			clipped = append(clipped, c)
		}
	}
	if len(clipped) == 0 {
		return []Interval{base}
	}
	merged := Merge(clipped)

	var out []Interval
	cursor := base.Start
	for _, m := range merged {
		if m.Start.After(cursor) {
			out = append(out, Interval{Start: cursor, End: m.Start})
		}
		if m.End.After(cursor) {
			cursor = m.End
		}
	}
	if base.End.After(cursor) {
		out = append(out, Interval{Start: cursor, End: base.End})
	}
	return out
}

// SubtractAll subtracts cuts from every interval of base. Base must be
// sorted and non-overlapping; the result is too.
func SubtractAll(base []Interval, cuts []Interval) []Interval {
	var out []Interval
	for _, b := range base {
		out = append(out, Subtract(b, cuts)...)
	}
	return out
}

// Intersect returns the pieces common to both sets. Both inputs must be
// sorted and non-overlapping (as produced by Merge or Subtract).
func Intersect(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start.After(start) {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End.Before(end) {
			end = b[j].End
		}
		if end.After(start) {
			out = append(out, Interval{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}
