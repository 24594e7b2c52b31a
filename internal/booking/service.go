// Package booking implements the slot search engine and the booking
// transaction manager: finding bookable time windows for a set of services
// and accepting bookings without double-booking staff under concurrency.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"salonbook/internal/calendar"
	"salonbook/internal/model"
	"salonbook/internal/schedule"
)

const DefaultSlotStep = 15 * time.Minute

type Service struct {
	catalog  CatalogStore
	staff    StaffStore
	business BusinessStore
	appts    AppointmentStore
	logger   *slog.Logger
	slotStep time.Duration
	now      func() time.Time
}

type Option func(*Service)

// WithSlotStep overrides the candidate start-time granularity.
func WithSlotStep(step time.Duration) Option {
	return func(s *Service) {
		if step > 0 {
			s.slotStep = step
		}
	}
}

// WithClock injects the time source. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(catalog CatalogStore, staff StaffStore, business BusinessStore, appts AppointmentStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		catalog:  catalog,
		staff:    staff,
		business: business,
		appts:    appts,
		logger:   logger,
		slotStep: DefaultSlotStep,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SlotQuery struct {
	ServiceIDs       []string
	PreferredStaffID string
	From             time.Time
	To               time.Time
}

type Slot struct {
	Start     time.Time
	End       time.Time
	StaffID   string
	StaffName string
}

type SearchResult struct {
	SearchDate           time.Time
	TotalDurationMinutes int
	Slots                []Slot
}

// FindAvailableSlots enumerates bookable start times for the requested
// services inside [q.From, q.To). Empty results are a valid answer: a closed
// business, a fully booked day, or no eligible staff all yield zero slots,
// not an error.
func (s *Service) FindAvailableSlots(ctx context.Context, q SlotQuery) (SearchResult, error) {
	if len(q.ServiceIDs) == 0 {
		return SearchResult{}, invalidArgumentf("serviceIds must not be empty")
	}
	if !q.To.After(q.From) {
		return SearchResult{}, invalidArgumentf("endDate must be after startDate")
	}

	services, err := s.catalog.ServicesByIDs(ctx, q.ServiceIDs)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SearchResult{}, invalidArgumentf("unknown service id")
		}
		return SearchResult{}, err
	}

	block := totalBlock(services)
	if block <= 0 {
		return SearchResult{}, invalidArgumentf("requested services have zero total duration")
	}

	result := SearchResult{
		SearchDate:           q.From.UTC(),
		TotalDurationMinutes: int(block / time.Minute),
	}

	eligible := eligibleStaffIDs(services)
	if q.PreferredStaffID != "" {
		// An ineligible preferred staff member is an empty answer, not an
		// error: the client's staff pick may simply predate a catalog edit.
		if !containsString(eligible, q.PreferredStaffID) {
			return result, nil
		}
		eligible = []string{q.PreferredStaffID}
	}
	if len(eligible) == 0 {
		return result, nil
	}

	settings, err := s.business.Settings(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	loc := locationOrUTC(settings.Timezone)
	window := calendar.Interval{Start: q.From.UTC(), End: q.To.UTC()}
	now := s.now()

	for _, staffID := range eligible {
		member, err := s.staff.Get(ctx, staffID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return SearchResult{}, err
		}
		if !member.IsActive {
			continue
		}

		free, err := s.freeIntervals(ctx, staffID, settings, loc, window)
		if err != nil {
			return SearchResult{}, err
		}
		if len(free) == 0 {
			continue
		}

		busy, err := s.appts.BookedIntervals(ctx, staffID, window.Start, window.End)
		if err != nil {
			return SearchResult{}, err
		}
		open := calendar.SubtractAll(free, busy)

		for _, win := range open {
			for _, start := range calendar.SlotStarts(win, block, s.slotStep, now) {
				result.Slots = append(result.Slots, Slot{
					Start:     start,
					End:       start.Add(block),
					StaffID:   staffID,
					StaffName: member.FullName(),
				})
			}
		}
	}

	sort.Slice(result.Slots, func(i, j int) bool {
		if !result.Slots[i].Start.Equal(result.Slots[j].Start) {
			return result.Slots[i].Start.Before(result.Slots[j].Start)
		}
		return result.Slots[i].StaffName < result.Slots[j].StaffName
	})
	return result, nil
}

func (s *Service) freeIntervals(ctx context.Context, staffID string, settings model.BusinessSettings, loc *time.Location, window calendar.Interval) ([]calendar.Interval, error) {
	week, err := s.staff.WeeklySchedule(ctx, staffID)
	if err != nil {
		return nil, err
	}
	// Widen the override fetch by a day on each side: a local calendar date
	// can map outside the UTC window's date span.
	overrides, err := s.staff.Overrides(ctx, staffID,
		window.Start.AddDate(0, 0, -1), window.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	avail := schedule.StaffAvailability{
		Timezone:       loc,
		BusinessHours:  settings.OperatingHours,
		WeeklySchedule: week,
		Overrides:      overrides,
	}
	return avail.FreeIntervals(window), nil
}

func totalBlock(services []model.Service) time.Duration {
	var mins int
	for _, svc := range services {
		mins += svc.BlockMinutes()
	}
	return time.Duration(mins) * time.Minute
}

// eligibleStaffIDs intersects assigned staff across all requested services:
// one person must perform the whole booking.
func eligibleStaffIDs(services []model.Service) []string {
	if len(services) == 0 {
		return nil
	}
	counts := map[string]int{}
	for _, svc := range services {
		seen := map[string]struct{}{}
		for _, id := range svc.StaffIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			counts[id]++
		}
	}
	var out []string
	for _, id := range services[0].StaffIDs {
		if counts[id] == len(services) && !containsString(out, id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func containsString(in []string, want string) bool {
	for _, s := range in {
		if s == want {
			return true
		}
	}
	return false
}

func locationOrUTC(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}
