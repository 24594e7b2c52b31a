package model

// OperatingHours is one weekday entry of the business's opening hours.
// Exactly one entry exists per weekday 0..6. Minutes count from local
// midnight; they are zero when the day is closed.
type OperatingHours struct {
	Weekday     int
	IsClosed    bool
	OpenMinute  int
	CloseMinute int
}

type BusinessAddress struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type BusinessSettings struct {
	ID             string
	Name           string
	Description    string
	PhoneNumber    string
	Email          string
	WebsiteURL     string
	Timezone       string
	Address        BusinessAddress
	OperatingHours []OperatingHours
}
