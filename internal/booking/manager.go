package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"salonbook/internal/calendar"
	"salonbook/internal/model"
)

type CreateRequest struct {
	CustomerID string
	StaffID    string
	StartTime  time.Time
	ServiceIDs []string
	Notes      string
}

// Create validates and atomically reserves an appointment. Price, duration,
// and the occupied block are recomputed from the current catalog; client
// echoes of end time or price are never trusted. The interval re-check and
// the insert happen inside one store transaction, so losing a race against a
// concurrent booking surfaces as ErrConflict with nothing written.
func (s *Service) Create(ctx context.Context, req CreateRequest) (model.Appointment, error) {
	if req.CustomerID == "" || req.StaffID == "" {
		return model.Appointment{}, invalidArgumentf("customerId and staffId are required")
	}
	if len(req.ServiceIDs) == 0 {
		return model.Appointment{}, invalidArgumentf("serviceIds must not be empty")
	}
	if req.StartTime.IsZero() {
		return model.Appointment{}, invalidArgumentf("startTimeUtc is required")
	}

	services, err := s.catalog.ServicesByIDs(ctx, req.ServiceIDs)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Appointment{}, invalidArgumentf("unknown service id")
		}
		return model.Appointment{}, err
	}
	block := totalBlock(services)
	if block <= 0 {
		return model.Appointment{}, invalidArgumentf("requested services have zero total duration")
	}

	member, err := s.staff.Get(ctx, req.StaffID)
	if err != nil {
		return model.Appointment{}, err
	}
	if !member.IsActive {
		return model.Appointment{}, invalidArgumentf("staff member is not active")
	}
	for _, svc := range services {
		if !containsString(svc.StaffIDs, req.StaffID) {
			return model.Appointment{}, invalidArgumentf("staff member is not assigned to service %q", svc.Name)
		}
	}

	start := req.StartTime.UTC()
	end := start.Add(block)
	if err := s.checkAvailability(ctx, req.StaffID, start, end); err != nil {
		return model.Appointment{}, err
	}

	appt := model.Appointment{
		ID:         uuid.NewString(),
		CustomerID: req.CustomerID,
		StaffID:    member.ID,
		StaffName:  member.FullName(),
		StartTime:  start,
		EndTime:    end,
		Status:     model.StatusScheduled,
		Notes:      req.Notes,
		CreatedAt:  s.now(),
	}
	for _, svc := range services {
		appt.TotalPrice += svc.Price
		appt.Services = append(appt.Services, model.AppointmentService{
			ServiceID:       svc.ID,
			ServiceName:     svc.Name,
			Price:           svc.Price,
			DurationMinutes: svc.DurationMinutes,
		})
	}

	if err := s.appts.Reserve(ctx, &appt); err != nil {
		return model.Appointment{}, err
	}
	s.logger.Info("appointment scheduled",
		"appointment_id", appt.ID,
		"staff_id", appt.StaffID,
		"start", appt.StartTime,
	)
	return appt, nil
}

// checkAvailability verifies the staff member's resolved free time still
// covers [start, end). Configuration drift between search and booking is a
// conflict, not an internal error: the client retries with a fresh search.
func (s *Service) checkAvailability(ctx context.Context, staffID string, start, end time.Time) error {
	settings, err := s.business.Settings(ctx)
	if err != nil {
		return err
	}
	loc := locationOrUTC(settings.Timezone)
	window := calendar.Interval{Start: start.AddDate(0, 0, -1), End: end.AddDate(0, 0, 1)}
	free, err := s.freeIntervals(ctx, staffID, settings, loc, window)
	if err != nil {
		return err
	}
	for _, iv := range free {
		if iv.Contains(start, end) {
			return nil
		}
	}
	return conflictf("requested time is outside staff availability")
}

func (s *Service) Get(ctx context.Context, id string) (model.Appointment, error) {
	if id == "" {
		return model.Appointment{}, invalidArgumentf("appointment id is required")
	}
	return s.appts.Get(ctx, id)
}

// Cancel flips the appointment to Cancelled. Cancelling an already cancelled
// appointment is a no-op returning the current row; finished appointments
// cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id, reason string) (model.Appointment, error) {
	appt, err := s.appts.Get(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	switch appt.Status {
	case model.StatusCancelled:
		return appt, nil
	case model.StatusCompleted, model.StatusNoShow:
		return model.Appointment{}, conflictf("appointment in status %s cannot be cancelled", appt.Status)
	}
	return s.appts.Cancel(ctx, id, reason)
}

type UpdateRequest struct {
	NewStartTime *time.Time
	NewStaffID   *string
	Notes        *string
	Status       *model.AppointmentStatus
}

// Update handles notes/status edits and reschedules. A reschedule (new start
// time or new staff member) re-runs the full create validation for the new
// interval, excluding the appointment's own current interval from the
// conflict check.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (model.Appointment, error) {
	appt, err := s.appts.Get(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if appt.Status == model.StatusCancelled {
		return model.Appointment{}, conflictf("cancelled appointment cannot be updated")
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return model.Appointment{}, invalidArgumentf("unknown status %q", string(*req.Status))
		}
		if *req.Status == model.StatusCancelled {
			return model.Appointment{}, invalidArgumentf("use the cancel endpoint to cancel an appointment")
		}
		appt.Status = *req.Status
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}

	reschedule := req.NewStartTime != nil || req.NewStaffID != nil
	if reschedule {
		staffID := appt.StaffID
		if req.NewStaffID != nil && *req.NewStaffID != "" {
			staffID = *req.NewStaffID
		}
		start := appt.StartTime
		if req.NewStartTime != nil {
			start = req.NewStartTime.UTC()
		}

		// Block length is recomputed from the current catalog: service
		// definitions may have changed since the original booking.
		ids := make([]string, 0, len(appt.Services))
		for _, svc := range appt.Services {
			ids = append(ids, svc.ServiceID)
		}
		services, err := s.catalog.ServicesByIDs(ctx, ids)
		if err != nil {
			return model.Appointment{}, err
		}
		block := totalBlock(services)

		member, err := s.staff.Get(ctx, staffID)
		if err != nil {
			return model.Appointment{}, err
		}
		if !member.IsActive {
			return model.Appointment{}, invalidArgumentf("staff member is not active")
		}
		for _, svc := range services {
			if !containsString(svc.StaffIDs, staffID) {
				return model.Appointment{}, invalidArgumentf("staff member is not assigned to service %q", svc.Name)
			}
		}

		end := start.Add(block)
		if err := s.checkAvailability(ctx, staffID, start, end); err != nil {
			return model.Appointment{}, err
		}

		appt.StaffID = member.ID
		appt.StaffName = member.FullName()
		appt.StartTime = start
		appt.EndTime = end
		if req.Status == nil {
			appt.Status = model.StatusRescheduled
		}
	}

	if err := s.appts.Update(ctx, &appt, reschedule); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string, includePast bool, pageNumber, pageSize int) ([]model.Appointment, error) {
	if customerID == "" {
		return nil, invalidArgumentf("customer id is required")
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.appts.ListByCustomer(ctx, customerID, includePast, (pageNumber-1)*pageSize, pageSize)
}

// CalendarView is the administrator projection: all appointments in range
// plus the staff roster for color/labeling. No new logic beyond filtering.
func (s *Service) CalendarView(ctx context.Context, from, to time.Time, staffIDs []string) ([]model.Appointment, []model.Staff, error) {
	if !to.After(from) {
		return nil, nil, invalidArgumentf("endDate must be after startDate")
	}
	appts, err := s.appts.ListRange(ctx, from, to, staffIDs)
	if err != nil {
		return nil, nil, err
	}
	roster, err := s.staff.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(staffIDs) > 0 {
		var filtered []model.Staff
		for _, member := range roster {
			if containsString(staffIDs, member.ID) {
				filtered = append(filtered, member)
			}
		}
		roster = filtered
	}
	return appts, roster, nil
}
