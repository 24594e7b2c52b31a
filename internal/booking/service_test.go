package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"salonbook/internal/model"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	catalog  *fakeCatalog
	staff    *fakeStaff
	business *fakeBusiness
	appts    *fakeAppointments
	svc      *Service
}

// newFixture builds a salon open 09:00-18:00 every day with one staff
// member working 09:00-17:00 and a single 30-minute haircut service.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	var hours []model.OperatingHours
	var week []model.StaffDay
	for wd := 0; wd <= 6; wd++ {
		hours = append(hours, model.OperatingHours{Weekday: wd, OpenMinute: 9 * 60, CloseMinute: 18 * 60})
		week = append(week, model.StaffDay{Weekday: wd, IsWorking: true, StartMinute: 9 * 60, EndMinute: 17 * 60})
	}

	f := &fixture{
		catalog: &fakeCatalog{services: map[string]model.Service{
			"haircut": {
				ID: "haircut", Name: "Haircut", Price: 40,
				DurationMinutes: 30, IsActive: true,
				StaffIDs: []string{"st1"},
			},
		}},
		staff: &fakeStaff{
			members: map[string]model.Staff{
				"st1": {ID: "st1", FirstName: "Ava", LastName: "Stone", IsActive: true},
			},
			week:      map[string][]model.StaffDay{"st1": week},
			overrides: map[string][]model.AvailabilityOverride{},
		},
		business: &fakeBusiness{settings: model.BusinessSettings{Name: "Test Salon", Timezone: "UTC", OperatingHours: hours}},
		appts:    newFakeAppointments(),
	}

	opts = append([]Option{WithClock(func() time.Time { return monday.Add(-24 * time.Hour) })}, opts...)
	f.svc = NewService(f.catalog, f.staff, f.business, f.appts, testLogger(), opts...)
	return f
}

func dayQuery(serviceIDs ...string) SlotQuery {
	return SlotQuery{
		ServiceIDs: serviceIDs,
		From:       monday,
		To:         monday.AddDate(0, 0, 1),
	}
}

func TestFindAvailableSlots_SkipsConflictingStarts(t *testing.T) {
	f := newFixture(t)

	// Existing booking 10:00-10:30.
	err := f.appts.Reserve(context.Background(), &model.Appointment{
		ID: "existing", StaffID: "st1", CustomerID: "c0",
		StartTime: monday.Add(10 * time.Hour),
		EndTime:   monday.Add(10*time.Hour + 30*time.Minute),
		Status:    model.StatusScheduled,
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	result, err := f.svc.FindAvailableSlots(context.Background(), dayQuery("haircut"))
	if err != nil {
		t.Fatalf("FindAvailableSlots: %v", err)
	}
	if result.TotalDurationMinutes != 30 {
		t.Fatalf("expected total duration 30, got %d", result.TotalDurationMinutes)
	}

	starts := map[string]bool{}
	for _, s := range result.Slots {
		starts[s.Start.Format("15:04")] = true
		if s.End.Sub(s.Start) != 30*time.Minute {
			t.Fatalf("slot %v has wrong length", s)
		}
	}
	for _, excluded := range []string{"09:45", "10:00", "10:15"} {
		if starts[excluded] {
			t.Fatalf("start %s should be excluded", excluded)
		}
	}
	for _, included := range []string{"09:00", "09:30", "10:30", "16:30"} {
		if !starts[included] {
			t.Fatalf("start %s should be included", included)
		}
	}
	if starts["16:45"] {
		t.Fatal("16:45 would end past the staff working window")
	}
}

func TestFindAvailableSlots_SortedByStartThenStaffName(t *testing.T) {
	f := newFixture(t)
	f.staff.members["st2"] = model.Staff{ID: "st2", FirstName: "Ben", LastName: "Ito", IsActive: true}
	f.staff.week["st2"] = f.staff.week["st1"]
	svc := f.catalog.services["haircut"]
	svc.StaffIDs = []string{"st2", "st1"}
	f.catalog.services["haircut"] = svc

	result, err := f.svc.FindAvailableSlots(context.Background(), dayQuery("haircut"))
	if err != nil {
		t.Fatalf("FindAvailableSlots: %v", err)
	}
	for i := 1; i < len(result.Slots); i++ {
		prev, cur := result.Slots[i-1], result.Slots[i]
		if cur.Start.Before(prev.Start) {
			t.Fatalf("slots out of order at %d: %v before %v", i, cur.Start, prev.Start)
		}
		if cur.Start.Equal(prev.Start) && cur.StaffName < prev.StaffName {
			t.Fatalf("staff name tiebreak violated at %d", i)
		}
	}
	if len(result.Slots) == 0 || result.Slots[0].StaffName != "Ava Stone" {
		t.Fatalf("expected Ava Stone first at 09:00, got %+v", result.Slots[0])
	}
}

func TestFindAvailableSlots_MultiServiceIntersection(t *testing.T) {
	f := newFixture(t)
	f.catalog.services["color"] = model.Service{
		ID: "color", Name: "Color", Price: 90,
		DurationMinutes: 60, BufferMinutes: 15, IsActive: true,
		StaffIDs: []string{"st2"},
	}

	// No one staff member can perform both services.
	result, err := f.svc.FindAvailableSlots(context.Background(), dayQuery("haircut", "color"))
	if err != nil {
		t.Fatalf("FindAvailableSlots: %v", err)
	}
	if len(result.Slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(result.Slots))
	}
	// Block still sums duration+buffer across services.
	if result.TotalDurationMinutes != 30+60+15 {
		t.Fatalf("expected total 105 minutes, got %d", result.TotalDurationMinutes)
	}
}

func TestFindAvailableSlots_BufferWidensBlock(t *testing.T) {
	f := newFixture(t)
	svc := f.catalog.services["haircut"]
	svc.BufferMinutes = 15
	f.catalog.services["haircut"] = svc

	result, err := f.svc.FindAvailableSlots(context.Background(), dayQuery("haircut"))
	if err != nil {
		t.Fatalf("FindAvailableSlots: %v", err)
	}
	if result.TotalDurationMinutes != 45 {
		t.Fatalf("expected 45 minute block, got %d", result.TotalDurationMinutes)
	}
	last := result.Slots[len(result.Slots)-1]
	// Last 45-minute block inside 09:00-17:00 starts 16:15.
	if !last.Start.Equal(monday.Add(16*time.Hour + 15*time.Minute)) {
		t.Fatalf("expected last start 16:15, got %v", last.Start)
	}
}

func TestFindAvailableSlots_IneligiblePreferredStaffIsEmptyAnswer(t *testing.T) {
	f := newFixture(t)
	q := dayQuery("haircut")
	q.PreferredStaffID = "st-unknown"

	result, err := f.svc.FindAvailableSlots(context.Background(), q)
	if err != nil {
		t.Fatalf("expected empty result, got error: %v", err)
	}
	if len(result.Slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(result.Slots))
	}
}

func TestFindAvailableSlots_InactiveStaffSkipped(t *testing.T) {
	f := newFixture(t)
	m := f.staff.members["st1"]
	m.IsActive = false
	f.staff.members["st1"] = m

	result, err := f.svc.FindAvailableSlots(context.Background(), dayQuery("haircut"))
	if err != nil {
		t.Fatalf("FindAvailableSlots: %v", err)
	}
	if len(result.Slots) != 0 {
		t.Fatalf("expected no slots for inactive staff, got %d", len(result.Slots))
	}
}

func TestFindAvailableSlots_UnknownServiceIsInvalidArgument(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.FindAvailableSlots(context.Background(), dayQuery("nonexistent"))
	if err == nil || !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestFindAvailableSlots_EmptyServiceList(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.FindAvailableSlots(context.Background(), dayQuery())
	if err == nil || !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestFindAvailableSlots_InvertedRange(t *testing.T) {
	f := newFixture(t)
	q := dayQuery("haircut")
	q.From, q.To = q.To, q.From
	_, err := f.svc.FindAvailableSlots(context.Background(), q)
	if err == nil || !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestFindAvailableSlots_Idempotent(t *testing.T) {
	f := newFixture(t)
	q := dayQuery("haircut")

	first, err := f.svc.FindAvailableSlots(context.Background(), q)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := f.svc.FindAvailableSlots(context.Background(), q)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if len(first.Slots) != len(second.Slots) {
		t.Fatalf("searches disagree: %d vs %d slots", len(first.Slots), len(second.Slots))
	}
	for i := range first.Slots {
		if !first.Slots[i].Start.Equal(second.Slots[i].Start) || first.Slots[i].StaffID != second.Slots[i].StaffID {
			t.Fatalf("slot %d differs between searches", i)
		}
	}
}

func TestFindAvailableSlots_BookedSlotDisappears(t *testing.T) {
	f := newFixture(t)
	q := dayQuery("haircut")

	before, err := f.svc.FindAvailableSlots(context.Background(), q)
	if err != nil {
		t.Fatalf("search before: %v", err)
	}
	target := before.Slots[0]

	_, err = f.svc.Create(context.Background(), CreateRequest{
		CustomerID: "c1",
		StaffID:    target.StaffID,
		StartTime:  target.Start,
		ServiceIDs: []string{"haircut"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	after, err := f.svc.FindAvailableSlots(context.Background(), q)
	if err != nil {
		t.Fatalf("search after: %v", err)
	}
	for _, s := range after.Slots {
		if s.StaffID == target.StaffID && s.Start.Before(target.End) && target.Start.Before(s.End) {
			t.Fatalf("slot %v still offered after booking %v", s.Start, target.Start)
		}
	}
	if len(after.Slots) >= len(before.Slots) {
		t.Fatalf("expected fewer slots after booking: %d -> %d", len(before.Slots), len(after.Slots))
	}
}
