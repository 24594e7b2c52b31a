package model

import (
	"strings"
	"time"
)

type Staff struct {
	ID           string
	FirstName    string
	LastName     string
	Title        string
	Email        string
	PhoneNumber  string
	ColorHex     string
	IsActive     bool
	HiredAt      *time.Time
	TerminatedAt *time.Time
}

func (s Staff) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StaffDay is one weekday entry of a staff member's recurring schedule.
// Minutes are counted from local midnight.
type StaffDay struct {
	Weekday     int
	IsWorking   bool
	StartMinute int
	EndMinute   int
}

type OverrideKind int

// Override kinds, applied by the resolver in this fixed order so that admin
// input order cannot change the outcome: full-day blocks first, then partial
// subtractions, then extra-availability additions.
const (
	OverrideFullDayUnavailable OverrideKind = iota
	OverridePartialUnavailable
	OverrideExtraAvailability
)

func (k OverrideKind) Valid() bool {
	return k >= OverrideFullDayUnavailable && k <= OverrideExtraAvailability
}

func (k OverrideKind) String() string {
	switch k {
	case OverrideFullDayUnavailable:
		return "FullDayUnavailable"
	case OverridePartialUnavailable:
		return "PartialUnavailable"
	case OverrideExtraAvailability:
		return "ExtraAvailability"
	default:
		return "Unknown"
	}
}

// AvailabilityOverride is a date-specific exception to a staff member's
// weekly schedule. Date is a business-local calendar date (midnight, no
// timezone significance beyond year/month/day). StartMinute/EndMinute are
// meaningful for partial and extra kinds only.
type AvailabilityOverride struct {
	ID          string
	StaffID     string
	Date        time.Time
	Kind        OverrideKind
	StartMinute int
	EndMinute   int
	Reason      string
}
