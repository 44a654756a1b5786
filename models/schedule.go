package models

// OrphanedReservation is a reservation whose time range no longer exists after
// a template or exception change. The booking behind it must be rescheduled by
// hand; it is surfaced here rather than silently dropped.
type OrphanedReservation struct {
	SlotID   string `bson:"slotId" json:"slotId"`
	BookedBy string `bson:"bookedBy" json:"bookedBy"`
	Start    int    `bson:"start" json:"start"`
	End      int    `bson:"end" json:"end"`
}

// DailySchedule is the concrete expansion of a weekly template plus calendar
// exceptions for one (provider, date) pair. It is derived state: regenerable
// at any time, with reservation state merged back in from the ledger.
type DailySchedule struct {
	ProviderID      string                `bson:"providerId" json:"providerId"`
	Date            string                `bson:"date" json:"date"`
	DayOfWeek       string                `bson:"dayOfWeek" json:"dayOfWeek"` // e.g. "Monday"
	IsWorkingDay    bool                  `bson:"isWorkingDay" json:"isWorkingDay"`
	IsHoliday       bool                  `bson:"isHoliday" json:"isHoliday"`
	HolidayReason   string                `bson:"holidayReason,omitempty" json:"holidayReason,omitempty"`
	WorkingHours    TimeRange             `bson:"workingHours" json:"workingHours"`
	BreakTimes      []BreakTime           `bson:"breakTimes,omitempty" json:"breakTimes,omitempty"`
	TimeSlots       []TimeSlot            `bson:"timeSlots" json:"timeSlots"`
	NeedsReschedule []OrphanedReservation `bson:"needsReschedule,omitempty" json:"needsReschedule,omitempty"`
}

// SlotByID returns the slot with the given id, or nil.
func (d *DailySchedule) SlotByID(id string) *TimeSlot {
	for i := range d.TimeSlots {
		if d.TimeSlots[i].ID == id {
			return &d.TimeSlots[i]
		}
	}
	return nil
}
