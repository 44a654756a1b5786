package models

// TimeSlot is a fixed-duration bookable window for one provider on one date.
// Slot IDs are deterministic (provider + date + start), so regenerating a
// schedule reproduces the same IDs.
type TimeSlot struct {
	ID                string  `bson:"id" json:"id"`
	ProviderID        string  `bson:"providerId" json:"providerId"`
	Date              string  `bson:"date" json:"date"`           // "2006-01-02"
	Start             int     `bson:"start" json:"start"`         // minutes from midnight (e.g., 480 for 8:00 AM)
	End               int     `bson:"end" json:"end"`             // minutes from midnight
	StartTime         string  `bson:"startTime" json:"startTime"` // "HH:MM"
	EndTime           string  `bson:"endTime" json:"endTime"`
	DurationMinutes   int     `bson:"durationMinutes" json:"durationMinutes"`
	Available         bool    `bson:"available" json:"available"`
	Price             float64 `bson:"price" json:"price"`
	AppointmentTypeID string  `bson:"appointmentTypeId,omitempty" json:"appointmentTypeId,omitempty"`
	BookedBy          string  `bson:"bookedBy,omitempty" json:"bookedBy,omitempty"`
}

// Overlaps reports whether the slot intersects the minute range [start, end).
func (s TimeSlot) Overlaps(start, end int) bool {
	return s.Start < end && start < s.End
}
