package models

// Per-date availability classification.
const (
	StatusAvailable   = "available"
	StatusBusy        = "busy"        // working day, zero free slots
	StatusBlocked     = "blocked"     // not a working day
	StatusUnavailable = "unavailable" // outside the generation horizon
)

// AvailabilityStatus is a derived, read-only summary for a single date.
type AvailabilityStatus struct {
	Date              string `json:"date"`
	Status            string `json:"status"`
	AvailableSlots    int    `json:"availableSlots"`
	TotalSlots        int    `json:"totalSlots"`
	NextAvailableTime string `json:"nextAvailableTime,omitempty"` // "HH:MM", empty when none
}

// AvailabilityResult is the aggregate over a date range. A failed date does
// not abort the range; it is omitted from Statuses and listed in FailedDates.
type AvailabilityResult struct {
	ProviderID  string               `json:"providerId"`
	Statuses    []AvailabilityStatus `json:"statuses"`
	FailedDates []string             `json:"failedDates,omitempty"`
}

// TimeRangeGroup is one time-of-day bucket of a day's slots.
type TimeRangeGroup struct {
	Label          string     `json:"label"` // "morning", "afternoon", "evening", "night"
	AvailableSlots int        `json:"availableSlots"`
	TotalSlots     int        `json:"totalSlots"`
	Slots          []TimeSlot `json:"slots"`
}
