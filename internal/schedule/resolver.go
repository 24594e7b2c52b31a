// Package schedule resolves a staff member's free time from the business's
// operating hours, the staff member's recurring weekly schedule, and
// date-specific availability overrides.
package schedule

import (
	"time"

	"salonbook/internal/calendar"
	"salonbook/internal/model"
)

// StaffAvailability bundles the read-only configuration needed to resolve
// one staff member's free intervals. All resolution happens in the business
// timezone; results are returned in UTC.
type StaffAvailability struct {
	Timezone       *time.Location
	BusinessHours  []model.OperatingHours
	WeeklySchedule []model.StaffDay
	Overrides      []model.AvailabilityOverride
}

// FreeIntervals returns the staff member's free time inside the UTC query
// range, sorted and non-overlapping. A closed business day or a non-working
// staff day contributes nothing, regardless of overrides on that date.
//
// Override precedence is fixed: FullDayUnavailable first (zeroes the day's
// window), then PartialUnavailable subtractions, then ExtraAvailability
// additions. Input order never matters, so an extra-availability window
// survives a same-day full-day block.
func (a StaffAvailability) FreeIntervals(query calendar.Interval) []calendar.Interval {
	if query.IsZero() {
		return nil
	}
	loc := a.Timezone
	if loc == nil {
		loc = time.UTC
	}

	hours := byWeekdayHours(a.BusinessHours)
	week := byWeekdayStaff(a.WeeklySchedule)

	var free []calendar.Interval
	localStart := query.Start.In(loc)
	day := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	for day.Before(query.End.In(loc)) {
		free = append(free, a.dayWindows(day, hours, week)...)
		day = day.AddDate(0, 0, 1)
	}

	var out []calendar.Interval
	for _, w := range free {
		w = calendar.Interval{Start: w.Start.UTC(), End: w.End.UTC()}
		if clipped := calendar.Clip(w, query); !clipped.IsZero() {
			out = append(out, clipped)
		}
	}
	return calendar.Merge(out)
}

func (a StaffAvailability) dayWindows(day time.Time, hours [7]*model.OperatingHours, week [7]*model.StaffDay) []calendar.Interval {
	weekday := int(day.Weekday())

	oh := hours[weekday]
	if oh == nil || oh.IsClosed {
		return nil
	}
	sd := week[weekday]
	if sd == nil || !sd.IsWorking {
		return nil
	}

	startMin := max(oh.OpenMinute, sd.StartMinute)
	endMin := min(oh.CloseMinute, sd.EndMinute)

	var windows []calendar.Interval
	if endMin > startMin {
		windows = append(windows, minuteWindow(day, startMin, endMin))
	}

	fullDay := false
	var cuts, extras []calendar.Interval
	for _, ov := range a.Overrides {
		if !sameDate(ov.Date, day) {
			continue
		}
		switch ov.Kind {
		case model.OverrideFullDayUnavailable:
			fullDay = true
		case model.OverridePartialUnavailable:
			if ov.EndMinute > ov.StartMinute {
				cuts = append(cuts, minuteWindow(day, ov.StartMinute, ov.EndMinute))
			}
		case model.OverrideExtraAvailability:
			if ov.EndMinute > ov.StartMinute {
				extras = append(extras, minuteWindow(day, ov.StartMinute, ov.EndMinute))
			}
		}
	}

	if fullDay {
		windows = nil
	}
	if len(cuts) > 0 {
		windows = calendar.SubtractAll(windows, cuts)
	}
	// Extras are added last and may extend beyond normal hours.
	return calendar.Merge(append(windows, extras...))
}

// minuteWindow builds wall-clock instants so that 09:00 means 09:00 local
// even on DST transition days, where midnight+9h lands elsewhere.
func minuteWindow(day time.Time, startMin, endMin int) calendar.Interval {
	return calendar.Interval{
		Start: atMinute(day, startMin),
		End:   atMinute(day, endMin),
	}
}

func atMinute(day time.Time, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), min/60, min%60, 0, 0, day.Location())
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func byWeekdayHours(in []model.OperatingHours) [7]*model.OperatingHours {
	var out [7]*model.OperatingHours
	for i := range in {
		if wd := in[i].Weekday; wd >= 0 && wd <= 6 {
			out[wd] = &in[i]
		}
	}
	return out
}

func byWeekdayStaff(in []model.StaffDay) [7]*model.StaffDay {
	var out [7]*model.StaffDay
	for i := range in {
		if wd := in[i].Weekday; wd >= 0 && wd <= 6 {
			out[wd] = &in[i]
		}
	}
	return out
}
