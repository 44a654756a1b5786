package models

// Calendar exception kinds. An exception always wins over the weekly template
// for its date.
const (
	ExceptionBlocked  = "blocked"  // provider not working at all
	ExceptionModified = "modified" // template fields substituted for the day
	ExceptionHoliday  = "holiday"  // fixed or floating holiday
)

// CalendarException is a date-specific override keyed by (provider, date).
type CalendarException struct {
	ProviderID string            `bson:"providerId" json:"providerId"`
	Date       string            `bson:"date" json:"date"` // "2006-01-02"
	Kind       string            `bson:"kind" json:"kind"`
	Reason     string            `bson:"reason,omitempty" json:"reason,omitempty"`
	Override   *TemplateOverride `bson:"override,omitempty" json:"override,omitempty"`
}
