package model

import "time"

type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "Scheduled"
	StatusConfirmed   AppointmentStatus = "Confirmed"
	StatusInProgress  AppointmentStatus = "InProgress"
	StatusCompleted   AppointmentStatus = "Completed"
	StatusCancelled   AppointmentStatus = "Cancelled"
	StatusNoShow      AppointmentStatus = "NoShow"
	StatusRescheduled AppointmentStatus = "Rescheduled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted,
		StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// Blocks reports whether an appointment in this status occupies staff time.
// Only cancelled appointments release their interval.
func (s AppointmentStatus) Blocks() bool {
	return s != StatusCancelled
}

// AppointmentService is a price/duration snapshot taken at booking time, so
// later catalog edits do not rewrite history.
type AppointmentService struct {
	ServiceID       string
	ServiceName     string
	Price           float64
	DurationMinutes int
}

type Appointment struct {
	ID                 string
	CustomerID         string
	StaffID            string
	StaffName          string
	StartTime          time.Time
	EndTime            time.Time
	Status             AppointmentStatus
	TotalPrice         float64
	Notes              string
	CancellationReason string
	CancelledAt        *time.Time
	CreatedAt          time.Time
	Services           []AppointmentService
}
