package calendar

import "time"

// SlotStarts returns candidate start times inside win, stepped at the given
// granularity, such that start+block fits before win.End. Starts before now
// are skipped; pass a zero now to disable the past filter.
func SlotStarts(win Interval, block, step time.Duration, now time.Time) []time.Time {
	if block <= 0 || step <= 0 || win.IsZero() {
		return nil
	}
	if win.Start.Add(block).After(win.End) {
		return nil
	}

	var starts []time.Time
	for t := win.Start; !t.Add(block).After(win.End); t = t.Add(step) {
		if !now.IsZero() && t.Before(now) {
			continue
		}
		starts = append(starts, t)
	}
	return starts
}
