package availability

import "medibook/models"

// Time-of-day buckets in minutes from midnight. Night wraps around midnight.
var timeRangeBuckets = []struct {
	label      string
	start, end int
}{
	{"morning", 6 * 60, 12 * 60},
	{"afternoon", 12 * 60, 17 * 60},
	{"evening", 17 * 60, 21 * 60},
	{"night", 21 * 60, 6 * 60},
}

// GroupSlotsByTimeRange partitions a day's slots into morning, afternoon,
// evening and night buckets. Buckets with zero slots are omitted.
func GroupSlotsByTimeRange(slots []models.TimeSlot) []models.TimeRangeGroup {
	var groups []models.TimeRangeGroup
	for _, bucket := range timeRangeBuckets {
		group := models.TimeRangeGroup{Label: bucket.label}
		for _, slot := range slots {
			if !inBucket(slot.Start, bucket.start, bucket.end) {
				continue
			}
			group.TotalSlots++
			if slot.Available {
				group.AvailableSlots++
			}
			group.Slots = append(group.Slots, slot)
		}
		if group.TotalSlots > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

// inBucket tests [start, end) membership, handling the night wrap-around
// where end < start means the bucket spans midnight.
func inBucket(minute, start, end int) bool {
	if start < end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}
