package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"salonbook/internal/calendar"
	"salonbook/internal/model"
)

type fakeCatalog struct {
	services map[string]model.Service
}

func (f *fakeCatalog) ServicesByIDs(_ context.Context, ids []string) ([]model.Service, error) {
	out := make([]model.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := f.services[id]
		if !ok {
			return nil, ErrNotFound
		}
		out = append(out, svc)
	}
	return out, nil
}

type fakeStaff struct {
	members   map[string]model.Staff
	week      map[string][]model.StaffDay
	overrides map[string][]model.AvailabilityOverride
}

func (f *fakeStaff) Get(_ context.Context, id string) (model.Staff, error) {
	m, ok := f.members[id]
	if !ok {
		return model.Staff{}, ErrNotFound
	}
	return m, nil
}

func (f *fakeStaff) List(_ context.Context) ([]model.Staff, error) {
	out := make([]model.Staff, 0, len(f.members))
	for _, m := range f.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStaff) WeeklySchedule(_ context.Context, staffID string) ([]model.StaffDay, error) {
	return f.week[staffID], nil
}

func (f *fakeStaff) Overrides(_ context.Context, staffID string, from, to time.Time) ([]model.AvailabilityOverride, error) {
	var out []model.AvailabilityOverride
	for _, ov := range f.overrides[staffID] {
		if ov.Date.After(from.AddDate(0, 0, -1)) && ov.Date.Before(to.AddDate(0, 0, 1)) {
			out = append(out, ov)
		}
	}
	return out, nil
}

type fakeBusiness struct {
	settings model.BusinessSettings
}

func (f *fakeBusiness) Settings(context.Context) (model.BusinessSettings, error) {
	return f.settings, nil
}

// fakeAppointments mirrors the Postgres store's concurrency contract: the
// overlap check and the write happen under one lock.
type fakeAppointments struct {
	mu   sync.Mutex
	byID map[string]model.Appointment
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{byID: map[string]model.Appointment{}}
}

func (f *fakeAppointments) Get(_ context.Context, id string) (model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.byID[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	return appt, nil
}

func (f *fakeAppointments) BookedIntervals(_ context.Context, staffID string, from, to time.Time) ([]calendar.Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []calendar.Interval
	for _, appt := range f.byID {
		if appt.StaffID != staffID || !appt.Status.Blocks() {
			continue
		}
		if calendar.Overlaps(appt.StartTime, appt.EndTime, from, to) {
			out = append(out, calendar.Interval{Start: appt.StartTime, End: appt.EndTime})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeAppointments) overlapsLocked(staffID string, start, end time.Time, excludeID string) bool {
	for _, appt := range f.byID {
		if appt.StaffID != staffID || !appt.Status.Blocks() || appt.ID == excludeID {
			continue
		}
		if calendar.Overlaps(appt.StartTime, appt.EndTime, start, end) {
			return true
		}
	}
	return false
}

func (f *fakeAppointments) Reserve(_ context.Context, appt *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.overlapsLocked(appt.StaffID, appt.StartTime, appt.EndTime, "") {
		return ErrConflict
	}
	f.byID[appt.ID] = *appt
	return nil
}

func (f *fakeAppointments) Update(_ context.Context, appt *model.Appointment, recheckInterval bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[appt.ID]; !ok {
		return ErrNotFound
	}
	if recheckInterval && f.overlapsLocked(appt.StaffID, appt.StartTime, appt.EndTime, appt.ID) {
		return ErrConflict
	}
	f.byID[appt.ID] = *appt
	return nil
}

func (f *fakeAppointments) Cancel(_ context.Context, id, reason string) (model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.byID[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	now := time.Now().UTC()
	appt.Status = model.StatusCancelled
	appt.CancellationReason = reason
	appt.CancelledAt = &now
	f.byID[id] = appt
	return appt, nil
}

func (f *fakeAppointments) ListByCustomer(_ context.Context, customerID string, includePast bool, offset, limit int) ([]model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Appointment
	now := time.Now().UTC()
	for _, appt := range f.byID {
		if appt.CustomerID != customerID {
			continue
		}
		if !includePast && !appt.EndTime.After(now) {
			continue
		}
		out = append(out, appt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAppointments) ListRange(_ context.Context, from, to time.Time, staffIDs []string) ([]model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Appointment
	for _, appt := range f.byID {
		if !calendar.Overlaps(appt.StartTime, appt.EndTime, from, to) {
			continue
		}
		if len(staffIDs) > 0 && !containsString(staffIDs, appt.StaffID) {
			continue
		}
		out = append(out, appt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}
