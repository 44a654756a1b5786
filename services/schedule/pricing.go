package schedule

import "math"

// Consultation pricing. A flat base rate applies inside core hours; slots
// starting before the core window opens or at 18:00 and later carry the
// after-hours surcharge.
const (
	BaseConsultationRate = 60.0
	AfterHoursMultiplier = 1.3
	coreOpenHour         = 8
	afterHoursStartHour  = 18
)

// SlotPrice returns the price for a slot starting at the given minute of the day.
func SlotPrice(startMinute int) float64 {
	hour := startMinute / 60
	if hour < coreOpenHour || hour >= afterHoursStartHour {
		return math.Round(BaseConsultationRate*AfterHoursMultiplier*100) / 100
	}
	return BaseConsultationRate
}
