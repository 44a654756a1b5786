package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"medibook/database/repository"
	"medibook/models"
	"medibook/utils"
)

// Generator expands weekly templates plus calendar exceptions into concrete
// daily schedules. Generation is a pure read; the one shared-resource
// mutation in the system is ReserveSlot, which delegates the
// reserve-if-still-free decision to the reservation ledger.
type Generator struct {
	Templates    repository.TemplateRepository
	Exceptions   repository.ExceptionRepository
	Reservations repository.ReservationRepository
}

func NewGenerator(templates repository.TemplateRepository, exceptions repository.ExceptionRepository, reservations repository.ReservationRepository) *Generator {
	return &Generator{
		Templates:    templates,
		Exceptions:   exceptions,
		Reservations: reservations,
	}
}

// GenerateDailySchedule produces the schedule for one (provider, date) pair.
// Regeneration is idempotent: slot ids are deterministic, and reservation
// state is merged back in from the ledger rather than recomputed.
func (g *Generator) GenerateDailySchedule(ctx context.Context, providerID, date string) (*models.DailySchedule, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, NewConfigurationError("date", "expected YYYY-MM-DD, got %q", date)
	}

	tpl, err := g.Templates.GetTemplate(ctx, providerID, day.Weekday())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "provider", ID: providerID}
		}
		return nil, fmt.Errorf("failed to load weekly template: %w", err)
	}

	sched := &models.DailySchedule{
		ProviderID:   providerID,
		Date:         date,
		DayOfWeek:    day.Weekday().String(),
		IsWorkingDay: tpl.IsWorkingDay,
		WorkingHours: tpl.WorkingHours,
		BreakTimes:   tpl.BreakTimes,
	}

	effective := *tpl
	exc, err := g.Exceptions.GetException(ctx, providerID, date)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load calendar exception: %w", err)
	}
	if exc != nil {
		applyException(sched, &effective, exc)
	}

	if !sched.IsWorkingDay {
		return g.mergeReservations(ctx, sched)
	}

	slots, err := expandSlots(providerID, date, &effective)
	if err != nil {
		return nil, err
	}
	sched.WorkingHours = effective.WorkingHours
	sched.BreakTimes = effective.BreakTimes
	sched.TimeSlots = slots

	return g.mergeReservations(ctx, sched)
}

// applyException folds a calendar exception into the day before expansion.
func applyException(sched *models.DailySchedule, tpl *models.WeeklyTemplate, exc *models.CalendarException) {
	switch exc.Kind {
	case models.ExceptionBlocked:
		sched.IsWorkingDay = false
		sched.HolidayReason = exc.Reason
	case models.ExceptionHoliday:
		sched.IsHoliday = true
		sched.HolidayReason = exc.Reason
		// A holiday is a day off unless the exception overrides hours.
		if exc.Override == nil {
			sched.IsWorkingDay = false
		}
	case models.ExceptionModified:
		// fall through to the override merge below
	}
	if exc.Override == nil {
		return
	}
	if exc.Override.IsWorkingDay != nil {
		sched.IsWorkingDay = *exc.Override.IsWorkingDay
		tpl.IsWorkingDay = *exc.Override.IsWorkingDay
	}
	if exc.Override.WorkingHours != nil {
		tpl.WorkingHours = *exc.Override.WorkingHours
	}
	if exc.Override.BreakTimes != nil {
		tpl.BreakTimes = *exc.Override.BreakTimes
	}
	if exc.Override.SlotDurationMinutes != nil {
		tpl.SlotDurationMinutes = *exc.Override.SlotDurationMinutes
	}
}

type minuteRange struct {
	start, end int
}

// expandSlots walks working hours in slot-duration increments. Candidates
// overlapping a break are excluded entirely, they never appear as slots.
func expandSlots(providerID, date string, tpl *models.WeeklyTemplate) ([]models.TimeSlot, error) {
	if tpl.SlotDurationMinutes <= 0 {
		return nil, NewConfigurationError("slotDurationMinutes", "must be positive, got %d", tpl.SlotDurationMinutes)
	}
	open, err := parseClock(tpl.WorkingHours.Start)
	if err != nil {
		return nil, NewConfigurationError("workingHours.start", "%v", err)
	}
	closing, err := parseClock(tpl.WorkingHours.End)
	if err != nil {
		return nil, NewConfigurationError("workingHours.end", "%v", err)
	}
	if open >= closing {
		return nil, NewConfigurationError("workingHours", "start %s is not before end %s", tpl.WorkingHours.Start, tpl.WorkingHours.End)
	}

	breaks := make([]minuteRange, 0, len(tpl.BreakTimes))
	for _, br := range tpl.BreakTimes {
		bs, err := parseClock(br.Start)
		if err != nil {
			return nil, NewConfigurationError("breakTimes.start", "%v", err)
		}
		be, err := parseClock(br.End)
		if err != nil {
			return nil, NewConfigurationError("breakTimes.end", "%v", err)
		}
		breaks = append(breaks, minuteRange{bs, be})
	}

	defaultType := ""
	if len(tpl.AllowedAppointmentTypeIDs) > 0 {
		defaultType = tpl.AllowedAppointmentTypeIDs[0]
	}

	var slots []models.TimeSlot
	for start := open; start+tpl.SlotDurationMinutes <= closing; start += tpl.SlotDurationMinutes {
		end := start + tpl.SlotDurationMinutes
		if intersectsAny(start, end, breaks) {
			continue
		}
		slots = append(slots, models.TimeSlot{
			ID:                SlotID(providerID, date, start),
			ProviderID:        providerID,
			Date:              date,
			Start:             start,
			End:               end,
			StartTime:         FormatClock(start),
			EndTime:           FormatClock(end),
			DurationMinutes:   tpl.SlotDurationMinutes,
			Available:         true,
			Price:             SlotPrice(start),
			AppointmentTypeID: defaultType,
		})
	}
	return slots, nil
}

func intersectsAny(start, end int, breaks []minuteRange) bool {
	for _, br := range breaks {
		if start < br.end && br.start < end {
			return true
		}
	}
	return false
}

// SlotID derives the deterministic slot identifier from provider, date and
// start time, e.g. "doc-1-2026-03-02-0830".
func SlotID(providerID, date string, startMinute int) string {
	return fmt.Sprintf("%s-%s-%02d%02d", providerID, date, startMinute/60, startMinute%60)
}

// mergeReservations folds the reservation ledger back into a freshly
// generated schedule. A reservation whose slot no longer exists (template or
// exception change) is surfaced in NeedsReschedule, never silently dropped.
func (g *Generator) mergeReservations(ctx context.Context, sched *models.DailySchedule) (*models.DailySchedule, error) {
	reservations, err := g.Reservations.ListForDate(ctx, sched.ProviderID, sched.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	for _, res := range reservations {
		if slot := sched.SlotByID(res.SlotID); slot != nil {
			slot.Available = false
			slot.BookedBy = res.BookedBy
			continue
		}
		sched.NeedsReschedule = append(sched.NeedsReschedule, models.OrphanedReservation{
			SlotID:   res.SlotID,
			BookedBy: res.BookedBy,
			Start:    res.Start,
			End:      res.End,
		})
	}
	if len(sched.NeedsReschedule) > 0 {
		sort.Slice(sched.NeedsReschedule, func(i, j int) bool {
			return sched.NeedsReschedule[i].Start < sched.NeedsReschedule[j].Start
		})
		utils.GetLogger().Warn("reservations orphaned by schedule change",
			zap.String("providerID", sched.ProviderID),
			zap.String("date", sched.Date),
			zap.Int("count", len(sched.NeedsReschedule)))
	}
	return sched, nil
}

// ReserveSlot re-generates the day at commit time and reserves the slot if it
// is still free. Losing the race, or the slot vanishing after a template
// change, both surface as SlotConflictError.
func (g *Generator) ReserveSlot(ctx context.Context, providerID, date, slotID, bookedBy string) (*models.TimeSlot, error) {
	sched, err := g.GenerateDailySchedule(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	slot := sched.SlotByID(slotID)
	if slot == nil {
		return nil, &SlotConflictError{SlotID: slotID, Reason: "slot no longer exists for this date"}
	}
	if !slot.Available {
		return nil, &SlotConflictError{SlotID: slotID, Reason: "slot already booked"}
	}

	err = g.Reservations.Reserve(ctx, models.SlotReservation{
		SlotID:     slot.ID,
		ProviderID: providerID,
		Date:       date,
		Start:      slot.Start,
		End:        slot.End,
		BookedBy:   bookedBy,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, &SlotConflictError{SlotID: slotID, Reason: "slot taken by a concurrent booking"}
		}
		return nil, fmt.Errorf("failed to reserve slot: %w", err)
	}

	reserved := *slot
	reserved.Available = false
	reserved.BookedBy = bookedBy
	return &reserved, nil
}

// ReleaseSlot frees a reserved slot, typically on booking cancellation.
func (g *Generator) ReleaseSlot(ctx context.Context, slotID string) error {
	if err := g.Reservations.Release(ctx, slotID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "reservation", ID: slotID}
		}
		return err
	}
	return nil
}
