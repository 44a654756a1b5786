package models

import "time"

// TimeRange is a clock interval in "HH:MM" form.
type TimeRange struct {
	Start string `bson:"start" json:"start"` // e.g. "08:00"
	End   string `bson:"end" json:"end"`     // e.g. "17:00"
}

// BreakTime is a non-bookable interval inside working hours.
type BreakTime struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
	Label string `bson:"label,omitempty" json:"label,omitempty"` // e.g. "Lunch"
}

// WeeklyTemplate is one provider's recurring setup for a single weekday.
// Templates are immutable per (provider, weekday) and replaced wholesale on update.
type WeeklyTemplate struct {
	ProviderID                string       `bson:"providerId" json:"providerId"`
	Weekday                   time.Weekday `bson:"weekday" json:"weekday"`
	IsWorkingDay              bool         `bson:"isWorkingDay" json:"isWorkingDay"`
	WorkingHours              TimeRange    `bson:"workingHours" json:"workingHours"`
	BreakTimes                []BreakTime  `bson:"breakTimes,omitempty" json:"breakTimes,omitempty"`
	SlotDurationMinutes       int          `bson:"slotDurationMinutes" json:"slotDurationMinutes"`
	AllowedAppointmentTypeIDs []string     `bson:"allowedAppointmentTypeIds,omitempty" json:"allowedAppointmentTypeIds,omitempty"`
}

// TemplateOverride carries the fields a "modified" calendar exception may
// substitute into the weekday template. Nil fields are left untouched.
type TemplateOverride struct {
	IsWorkingDay        *bool        `bson:"isWorkingDay,omitempty" json:"isWorkingDay,omitempty"`
	WorkingHours        *TimeRange   `bson:"workingHours,omitempty" json:"workingHours,omitempty"`
	BreakTimes          *[]BreakTime `bson:"breakTimes,omitempty" json:"breakTimes,omitempty"`
	SlotDurationMinutes *int         `bson:"slotDurationMinutes,omitempty" json:"slotDurationMinutes,omitempty"`
}
