package availability

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"medibook/models"
	"medibook/services/schedule"
	"medibook/utils"
)

// DefaultHorizonDays is the rolling generation window. Dates past the horizon
// are reported as "unavailable" without invoking the generator.
const DefaultHorizonDays = 60

// Aggregator summarises generated daily schedules over a date range.
// Aggregation is a pure read and may run in parallel across providers.
type Aggregator struct {
	Generator   *schedule.Generator
	HorizonDays int

	// now is swappable so the horizon can be pinned in tests.
	now func() time.Time
}

func NewAggregator(gen *schedule.Generator) *Aggregator {
	return &Aggregator{
		Generator:   gen,
		HorizonDays: DefaultHorizonDays,
		now:         time.Now,
	}
}

// GetAvailability classifies every date in the inclusive range. Dates come
// back in ascending calendar order regardless of input order. A generation
// failure for one date is isolated: the date lands in FailedDates and the
// rest of the range is still aggregated.
func (a *Aggregator) GetAvailability(ctx context.Context, providerID, startDate, endDate string) (*models.AvailabilityResult, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, schedule.NewConfigurationError("startDate", "expected YYYY-MM-DD, got %q", startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, schedule.NewConfigurationError("endDate", "expected YYYY-MM-DD, got %q", endDate)
	}
	if end.Before(start) {
		start, end = end, start
	}

	horizon := a.horizonEnd()
	logger := utils.GetLogger()
	result := &models.AvailabilityResult{ProviderID: providerID}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		if d.After(horizon) {
			result.Statuses = append(result.Statuses, models.AvailabilityStatus{
				Date:   date,
				Status: models.StatusUnavailable,
			})
			continue
		}

		sched, err := a.Generator.GenerateDailySchedule(ctx, providerID, date)
		if err != nil {
			logger.Warn("availability: generation failed for date",
				zap.String("providerID", providerID),
				zap.String("date", date),
				zap.Error(err))
			result.FailedDates = append(result.FailedDates, date)
			continue
		}
		result.Statuses = append(result.Statuses, classify(sched))
	}

	sort.Slice(result.Statuses, func(i, j int) bool {
		return result.Statuses[i].Date < result.Statuses[j].Date
	})
	return result, nil
}

func (a *Aggregator) horizonEnd() time.Time {
	days := a.HorizonDays
	if days <= 0 {
		days = DefaultHorizonDays
	}
	nowFn := a.now
	if nowFn == nil {
		nowFn = time.Now
	}
	return nowFn().AddDate(0, 0, days)
}

// classify maps one generated schedule onto its per-date status summary.
func classify(sched *models.DailySchedule) models.AvailabilityStatus {
	status := models.AvailabilityStatus{
		Date:       sched.Date,
		TotalSlots: len(sched.TimeSlots),
	}
	if !sched.IsWorkingDay {
		status.Status = models.StatusBlocked
		return status
	}

	nextAvailable := -1
	for _, slot := range sched.TimeSlots {
		if !slot.Available {
			continue
		}
		status.AvailableSlots++
		if nextAvailable == -1 || slot.Start < nextAvailable {
			nextAvailable = slot.Start
		}
	}
	if status.AvailableSlots == 0 {
		status.Status = models.StatusBusy
		return status
	}
	status.Status = models.StatusAvailable
	status.NextAvailableTime = schedule.FormatClock(nextAvailable)
	return status
}
