package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibook/database/repository"
	"medibook/models"
)

// 2026-03-02 is a Monday.
const testDate = "2026-03-02"

func newTestGenerator(t *testing.T) (*Generator, *repository.MemoryTemplateRepo, *repository.MemoryExceptionRepo) {
	t.Helper()
	templates := repository.NewMemoryTemplateRepo()
	exceptions := repository.NewMemoryExceptionRepo()
	reservations := repository.NewMemoryReservationRepo()
	return NewGenerator(templates, exceptions, reservations), templates, exceptions
}

func seedProvider(t *testing.T, templates *repository.MemoryTemplateRepo, tpl models.WeeklyTemplate) {
	t.Helper()
	tpl.Weekday = time.Monday
	err := templates.ReplaceWeek(context.Background(), "doc-1", []models.WeeklyTemplate{tpl})
	require.NoError(t, err)
}

func mondayTemplate() models.WeeklyTemplate {
	return models.WeeklyTemplate{
		IsWorkingDay:              true,
		WorkingHours:              models.TimeRange{Start: "08:00", End: "12:00"},
		SlotDurationMinutes:       30,
		AllowedAppointmentTypeIDs: []string{"consultation"},
	}
}

func TestGenerateDailySchedule_ExpandsTemplate(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)

	assert.Equal(t, "Monday", sched.DayOfWeek)
	assert.True(t, sched.IsWorkingDay)
	require.Len(t, sched.TimeSlots, 8)

	first := sched.TimeSlots[0]
	assert.Equal(t, "doc-1-2026-03-02-0800", first.ID)
	assert.Equal(t, "08:00", first.StartTime)
	assert.Equal(t, "08:30", first.EndTime)
	assert.Equal(t, 480, first.Start)
	assert.Equal(t, 510, first.End)
	assert.True(t, first.Available)
	assert.Equal(t, "consultation", first.AppointmentTypeID)

	last := sched.TimeSlots[7]
	assert.Equal(t, "11:30", last.StartTime)
	assert.Equal(t, "12:00", last.EndTime)
}

func TestGenerateDailySchedule_BreaksExcluded(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	tpl := mondayTemplate()
	tpl.BreakTimes = []models.BreakTime{{Start: "10:00", End: "10:30", Label: "Coffee"}}
	seedProvider(t, templates, tpl)

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	require.Len(t, sched.TimeSlots, 7)
	for _, slot := range sched.TimeSlots {
		assert.False(t, slot.Overlaps(600, 630), "slot %s overlaps the break", slot.ID)
	}
}

func TestGenerateDailySchedule_BreakMidSlotExcludesWholeSlot(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	tpl := mondayTemplate()
	// 10:15-10:45 clips two candidate slots; both disappear entirely.
	tpl.BreakTimes = []models.BreakTime{{Start: "10:15", End: "10:45"}}
	seedProvider(t, templates, tpl)

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	require.Len(t, sched.TimeSlots, 6)
	for _, slot := range sched.TimeSlots {
		assert.NotEqual(t, "10:00", slot.StartTime)
		assert.NotEqual(t, "10:30", slot.StartTime)
	}
}

func TestGenerateDailySchedule_TrailingPartialSlotDropped(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	tpl := mondayTemplate()
	tpl.WorkingHours = models.TimeRange{Start: "08:00", End: "09:45"}
	seedProvider(t, templates, tpl)

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	// 08:00, 08:30, 09:00 fit; 09:30-10:00 would run past closing.
	require.Len(t, sched.TimeSlots, 3)
	assert.Equal(t, "09:00", sched.TimeSlots[2].StartTime)
}

func TestGenerateDailySchedule_AfterHoursPricing(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	tpl := mondayTemplate()
	tpl.WorkingHours = models.TimeRange{Start: "07:00", End: "19:00"}
	tpl.SlotDurationMinutes = 60
	seedProvider(t, templates, tpl)

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	require.Len(t, sched.TimeSlots, 12)

	byStart := map[string]float64{}
	for _, slot := range sched.TimeSlots {
		byStart[slot.StartTime] = slot.Price
	}
	assert.Equal(t, BaseConsultationRate*AfterHoursMultiplier, byStart["07:00"])
	assert.Equal(t, BaseConsultationRate, byStart["08:00"])
	assert.Equal(t, BaseConsultationRate, byStart["17:00"])
	assert.Equal(t, BaseConsultationRate*AfterHoursMultiplier, byStart["18:00"])
}

func TestGenerateDailySchedule_NonWorkingWeekday(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())

	// Provider exists but has no template for Tuesday.
	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", "2026-03-03")
	require.NoError(t, err)
	assert.False(t, sched.IsWorkingDay)
	assert.Empty(t, sched.TimeSlots)
}

func TestGenerateDailySchedule_UnknownProvider(t *testing.T) {
	gen, _, _ := newTestGenerator(t)

	_, err := gen.GenerateDailySchedule(context.Background(), "nobody", testDate)
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "provider", nfe.Resource)
}

func TestGenerateDailySchedule_BadDate(t *testing.T) {
	gen, _, _ := newTestGenerator(t)

	_, err := gen.GenerateDailySchedule(context.Background(), "doc-1", "03/02/2026")
	var cfg *ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "date", cfg.Field)
}

func TestGenerateDailySchedule_BadTemplateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.WeeklyTemplate)
		wantField string
	}{
		{"zero duration", func(tpl *models.WeeklyTemplate) { tpl.SlotDurationMinutes = 0 }, "slotDurationMinutes"},
		{"inverted hours", func(tpl *models.WeeklyTemplate) {
			tpl.WorkingHours = models.TimeRange{Start: "17:00", End: "09:00"}
		}, "workingHours"},
		{"bad clock", func(tpl *models.WeeklyTemplate) {
			tpl.WorkingHours = models.TimeRange{Start: "8am", End: "12:00"}
		}, "workingHours.start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, templates, _ := newTestGenerator(t)
			tpl := mondayTemplate()
			tt.mutate(&tpl)
			seedProvider(t, templates, tpl)

			_, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
			var cfg *ConfigurationError
			require.ErrorAs(t, err, &cfg)
			assert.Equal(t, tt.wantField, cfg.Field)
		})
	}
}

func TestGenerateDailySchedule_BlockedException(t *testing.T) {
	gen, templates, exceptions := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())
	require.NoError(t, exceptions.PutException(context.Background(), models.CalendarException{
		ProviderID: "doc-1",
		Date:       testDate,
		Kind:       models.ExceptionBlocked,
		Reason:     "conference",
	}))

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	assert.False(t, sched.IsWorkingDay)
	assert.Equal(t, "conference", sched.HolidayReason)
	assert.Empty(t, sched.TimeSlots)
}

func TestGenerateDailySchedule_HolidayWithoutOverrideIsDayOff(t *testing.T) {
	gen, templates, exceptions := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())
	require.NoError(t, exceptions.PutException(context.Background(), models.CalendarException{
		ProviderID: "doc-1",
		Date:       testDate,
		Kind:       models.ExceptionHoliday,
		Reason:     "Public holiday",
	}))

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	assert.True(t, sched.IsHoliday)
	assert.False(t, sched.IsWorkingDay)
	assert.Empty(t, sched.TimeSlots)
}

func TestGenerateDailySchedule_ModifiedExceptionShortensDay(t *testing.T) {
	gen, templates, exceptions := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())
	hours := models.TimeRange{Start: "09:00", End: "11:00"}
	require.NoError(t, exceptions.PutException(context.Background(), models.CalendarException{
		ProviderID: "doc-1",
		Date:       testDate,
		Kind:       models.ExceptionModified,
		Override:   &models.TemplateOverride{WorkingHours: &hours},
	}))

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	require.Len(t, sched.TimeSlots, 4)
	assert.Equal(t, "09:00", sched.TimeSlots[0].StartTime)
	assert.Equal(t, hours, sched.WorkingHours)
}

func TestGenerateDailySchedule_Idempotent(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())

	first, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	second, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReserveSlot_SurvivesRegeneration(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())

	slotID := SlotID("doc-1", testDate, 510)
	reserved, err := gen.ReserveSlot(context.Background(), "doc-1", testDate, slotID, "patient-7")
	require.NoError(t, err)
	assert.False(t, reserved.Available)
	assert.Equal(t, "patient-7", reserved.BookedBy)

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	slot := sched.SlotByID(slotID)
	require.NotNil(t, slot)
	assert.False(t, slot.Available)
	assert.Equal(t, "patient-7", slot.BookedBy)

	free := 0
	for _, s := range sched.TimeSlots {
		if s.Available {
			free++
		}
	}
	assert.Equal(t, 7, free)
}

func TestReserveSlot_AlreadyBooked(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())

	slotID := SlotID("doc-1", testDate, 480)
	_, err := gen.ReserveSlot(context.Background(), "doc-1", testDate, slotID, "patient-1")
	require.NoError(t, err)

	_, err = gen.ReserveSlot(context.Background(), "doc-1", testDate, slotID, "patient-2")
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, slotID, conflict.SlotID)
}

func TestReserveSlot_UnknownSlot(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())

	// 13:00 is outside working hours, no such slot was generated.
	_, err := gen.ReserveSlot(context.Background(), "doc-1", testDate, SlotID("doc-1", testDate, 780), "patient-1")
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestReleaseSlot(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())

	slotID := SlotID("doc-1", testDate, 480)
	_, err := gen.ReserveSlot(context.Background(), "doc-1", testDate, slotID, "patient-1")
	require.NoError(t, err)

	require.NoError(t, gen.ReleaseSlot(context.Background(), slotID))

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	assert.True(t, sched.SlotByID(slotID).Available)

	var nfe *NotFoundError
	require.ErrorAs(t, gen.ReleaseSlot(context.Background(), slotID), &nfe)
}

func TestTemplateChange_OrphansReservation(t *testing.T) {
	gen, templates, _ := newTestGenerator(t)
	seedProvider(t, templates, mondayTemplate())

	slotID := SlotID("doc-1", testDate, 690) // 11:30
	_, err := gen.ReserveSlot(context.Background(), "doc-1", testDate, slotID, "patient-3")
	require.NoError(t, err)

	// Shorten the Monday hours so 11:30 no longer exists.
	tpl := mondayTemplate()
	tpl.WorkingHours = models.TimeRange{Start: "08:00", End: "10:00"}
	seedProvider(t, templates, tpl)

	sched, err := gen.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	assert.Nil(t, sched.SlotByID(slotID))
	require.Len(t, sched.NeedsReschedule, 1)
	assert.Equal(t, slotID, sched.NeedsReschedule[0].SlotID)
	assert.Equal(t, "patient-3", sched.NeedsReschedule[0].BookedBy)
	assert.Equal(t, 690, sched.NeedsReschedule[0].Start)
}

func TestParseClock(t *testing.T) {
	got, err := parseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, got)

	for _, bad := range []string{"8am", "25:00", "08:60", "0830", "-1:00"} {
		_, err := parseClock(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}

	assert.Equal(t, "08:30", FormatClock(510))
	assert.Equal(t, "00:00", FormatClock(0))
}
