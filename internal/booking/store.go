package booking

import (
	"context"
	"time"

	"salonbook/internal/calendar"
	"salonbook/internal/model"
)

// CatalogStore resolves service definitions at search and booking time. The
// engine never trusts client-echoed prices or durations; it always reads the
// current catalog.
type CatalogStore interface {
	// ServicesByIDs returns one service per requested id, active or not.
	// A missing id yields ErrNotFound.
	ServicesByIDs(ctx context.Context, ids []string) ([]model.Service, error)
}

// StaffStore exposes the staff directory and per-staff scheduling config.
type StaffStore interface {
	Get(ctx context.Context, id string) (model.Staff, error)
	List(ctx context.Context) ([]model.Staff, error)
	WeeklySchedule(ctx context.Context, staffID string) ([]model.StaffDay, error)
	// Overrides returns availability overrides whose date falls inside
	// [from, to] (business-local calendar dates).
	Overrides(ctx context.Context, staffID string, from, to time.Time) ([]model.AvailabilityOverride, error)
}

// BusinessStore supplies the business timezone and operating hours.
type BusinessStore interface {
	Settings(ctx context.Context) (model.BusinessSettings, error)
}

// AppointmentStore owns appointment occupancy. Reserve and Update are
// atomic: the overlap re-check and the write happen in one transaction, so
// two concurrent reservations for overlapping intervals on one staff member
// cannot both succeed. Implementations surface ErrConflict for overlap
// violations and ErrNotFound for unknown ids.
type AppointmentStore interface {
	Get(ctx context.Context, id string) (model.Appointment, error)

	// BookedIntervals returns the occupied intervals (status not Cancelled)
	// for a staff member overlapping [from, to), sorted by start.
	BookedIntervals(ctx context.Context, staffID string, from, to time.Time) ([]calendar.Interval, error)

	// Reserve inserts a new appointment if its interval is still free.
	Reserve(ctx context.Context, appt *model.Appointment) error

	// Update persists appointment changes. When recheckInterval is set the
	// implementation re-validates the (possibly new) interval against all
	// other non-cancelled appointments of the target staff member.
	Update(ctx context.Context, appt *model.Appointment, recheckInterval bool) error

	Cancel(ctx context.Context, id, reason string) (model.Appointment, error)

	ListByCustomer(ctx context.Context, customerID string, includePast bool, offset, limit int) ([]model.Appointment, error)

	// ListRange returns appointments (any status) overlapping [from, to),
	// optionally restricted to the given staff ids.
	ListRange(ctx context.Context, from, to time.Time, staffIDs []string) ([]model.Appointment, error)
}
