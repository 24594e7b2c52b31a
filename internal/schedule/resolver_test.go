package schedule

import (
	"testing"
	"time"

	"salonbook/internal/calendar"
	"salonbook/internal/model"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func allWeekHours(openMin, closeMin int) []model.OperatingHours {
	var out []model.OperatingHours
	for wd := 0; wd <= 6; wd++ {
		out = append(out, model.OperatingHours{Weekday: wd, OpenMinute: openMin, CloseMinute: closeMin})
	}
	return out
}

func allWeekStaff(startMin, endMin int) []model.StaffDay {
	var out []model.StaffDay
	for wd := 0; wd <= 6; wd++ {
		out = append(out, model.StaffDay{Weekday: wd, IsWorking: true, StartMinute: startMin, EndMinute: endMin})
	}
	return out
}

func utcQuery(day time.Time) calendar.Interval {
	return calendar.Interval{Start: day, End: day.AddDate(0, 0, 1)}
}

func TestFreeIntervals_BusinessAndStaffIntersection(t *testing.T) {
	a := StaffAvailability{
		BusinessHours:  allWeekHours(9*60, 18*60),
		WeeklySchedule: allWeekStaff(9*60, 17*60),
	}
	out := a.FreeIntervals(utcQuery(monday))
	if len(out) != 1 {
		t.Fatalf("expected 1 interval, got %d: %v", len(out), out)
	}
	if !out[0].Start.Equal(monday.Add(9*time.Hour)) || !out[0].End.Equal(monday.Add(17*time.Hour)) {
		t.Fatalf("expected 09:00-17:00, got %v", out[0])
	}
}

func TestFreeIntervals_ClosedDayYieldsNothing(t *testing.T) {
	hours := allWeekHours(9*60, 18*60)
	hours[1].IsClosed = true // Monday
	a := StaffAvailability{
		BusinessHours:  hours,
		WeeklySchedule: allWeekStaff(9*60, 17*60),
		Overrides: []model.AvailabilityOverride{
			// Extra availability cannot resurrect a closed business day.
			{Date: monday, Kind: model.OverrideExtraAvailability, StartMinute: 10 * 60, EndMinute: 12 * 60},
		},
	}
	if out := a.FreeIntervals(utcQuery(monday)); len(out) != 0 {
		t.Fatalf("expected no intervals on closed day, got %v", out)
	}
}

func TestFreeIntervals_NonWorkingDayYieldsNothing(t *testing.T) {
	week := allWeekStaff(9*60, 17*60)
	week[1].IsWorking = false
	a := StaffAvailability{
		BusinessHours:  allWeekHours(9*60, 18*60),
		WeeklySchedule: week,
	}
	if out := a.FreeIntervals(utcQuery(monday)); len(out) != 0 {
		t.Fatalf("expected no intervals on non-working day, got %v", out)
	}
}

func TestFreeIntervals_FullDayOverrideBeatsInputOrder(t *testing.T) {
	a := StaffAvailability{
		BusinessHours:  allWeekHours(9*60, 18*60),
		WeeklySchedule: allWeekStaff(9*60, 17*60),
		Overrides: []model.AvailabilityOverride{
			// Listed extra-first on purpose: precedence is by kind, not order.
			{Date: monday, Kind: model.OverrideExtraAvailability, StartMinute: 19 * 60, EndMinute: 20 * 60},
			{Date: monday, Kind: model.OverrideFullDayUnavailable},
		},
	}
	out := a.FreeIntervals(calendar.Interval{Start: monday, End: monday.Add(24 * time.Hour)})
	// Full-day zeroes the working window, but the extra window survives.
	if len(out) != 1 {
		t.Fatalf("expected 1 interval, got %d: %v", len(out), out)
	}
	if !out[0].Start.Equal(monday.Add(19*time.Hour)) || !out[0].End.Equal(monday.Add(20*time.Hour)) {
		t.Fatalf("expected extra window 19:00-20:00, got %v", out[0])
	}
}

func TestFreeIntervals_PartialOverrideCutsWindow(t *testing.T) {
	a := StaffAvailability{
		BusinessHours:  allWeekHours(9*60, 18*60),
		WeeklySchedule: allWeekStaff(9*60, 17*60),
		Overrides: []model.AvailabilityOverride{
			{Date: monday, Kind: model.OverridePartialUnavailable, StartMinute: 12 * 60, EndMinute: 13 * 60},
		},
	}
	out := a.FreeIntervals(utcQuery(monday))
	if len(out) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %v", len(out), out)
	}
	if !out[0].End.Equal(monday.Add(12*time.Hour)) || !out[1].Start.Equal(monday.Add(13*time.Hour)) {
		t.Fatalf("expected lunch cut, got %v", out)
	}
}

func TestFreeIntervals_ExtraBeyondBusinessHours(t *testing.T) {
	a := StaffAvailability{
		BusinessHours:  allWeekHours(9*60, 18*60),
		WeeklySchedule: allWeekStaff(9*60, 17*60),
		Overrides: []model.AvailabilityOverride{
			// Evening appointment window past closing time.
			{Date: monday, Kind: model.OverrideExtraAvailability, StartMinute: 18 * 60, EndMinute: 20 * 60},
		},
	}
	out := a.FreeIntervals(calendar.Interval{Start: monday, End: monday.Add(24 * time.Hour)})
	if len(out) != 2 {
		t.Fatalf("expected 2 intervals, got %d: %v", len(out), out)
	}
	if !out[1].Start.Equal(monday.Add(18*time.Hour)) || !out[1].End.Equal(monday.Add(20*time.Hour)) {
		t.Fatalf("expected extra window 18:00-20:00, got %v", out[1])
	}
}

func TestFreeIntervals_QueryClipsResults(t *testing.T) {
	a := StaffAvailability{
		BusinessHours:  allWeekHours(9*60, 18*60),
		WeeklySchedule: allWeekStaff(9*60, 17*60),
	}
	query := calendar.Interval{Start: monday.Add(10 * time.Hour), End: monday.Add(11 * time.Hour)}
	out := a.FreeIntervals(query)
	if len(out) != 1 {
		t.Fatalf("expected 1 interval, got %d: %v", len(out), out)
	}
	if !out[0].Start.Equal(query.Start) || !out[0].End.Equal(query.End) {
		t.Fatalf("expected clipped to query, got %v", out[0])
	}
}

func TestFreeIntervals_BusinessTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	a := StaffAvailability{
		Timezone:       loc,
		BusinessHours:  allWeekHours(9*60, 18*60),
		WeeklySchedule: allWeekStaff(9*60, 17*60),
	}
	// New York is UTC-5 on this date: local 09:00 is 14:00 UTC.
	query := calendar.Interval{Start: monday, End: monday.AddDate(0, 0, 1)}
	out := a.FreeIntervals(query)
	if len(out) == 0 {
		t.Fatal("expected intervals")
	}
	if !out[0].Start.Equal(monday.Add(14 * time.Hour)) {
		t.Fatalf("expected first interval at 14:00 UTC, got %v", out[0].Start)
	}
	for _, iv := range out {
		if iv.Start.Location() != time.UTC {
			t.Fatalf("expected UTC results, got %v", iv.Start.Location())
		}
	}
}

func TestFreeIntervals_SpringForwardDayKeepsWallClock(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	a := StaffAvailability{
		Timezone:       loc,
		BusinessHours:  allWeekHours(9*60, 18*60),
		WeeklySchedule: allWeekStaff(9*60, 17*60),
	}
	// 2026-03-08 is the spring-forward day in New York: 02:00 EST jumps to
	// 03:00 EDT, so local 09:00 is 13:00 UTC, not midnight+9h.
	springForward := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	out := a.FreeIntervals(utcQuery(springForward))
	if len(out) == 0 {
		t.Fatal("expected intervals")
	}
	if !out[0].Start.Equal(springForward.Add(13 * time.Hour)) {
		t.Fatalf("expected first interval at 13:00 UTC (09:00 EDT), got %v", out[0].Start)
	}
	if !out[0].End.Equal(springForward.Add(21 * time.Hour)) {
		t.Fatalf("expected interval end at 21:00 UTC (17:00 EDT), got %v", out[0].End)
	}
}

func TestFreeIntervals_EmptyScheduleConfig(t *testing.T) {
	a := StaffAvailability{}
	if out := a.FreeIntervals(utcQuery(monday)); len(out) != 0 {
		t.Fatalf("expected no intervals without config, got %v", out)
	}
}
