package model

type ServiceCategory struct {
	ID           string
	Name         string
	Description  string
	DisplayOrder int
	IsActive     bool
}

// Service is a bookable catalog entry. BufferMinutes is held after the
// service and widens the occupied block; it is not itself bookable.
type Service struct {
	ID              string
	CategoryID      string
	CategoryName    string
	Name            string
	Description     string
	Price           float64
	DurationMinutes int
	BufferMinutes   int
	IsActive        bool
	ColorHex        string
	StaffIDs        []string
}

// BlockMinutes is the time the service occupies on a staff calendar.
func (s Service) BlockMinutes() int {
	return s.DurationMinutes + s.BufferMinutes
}
