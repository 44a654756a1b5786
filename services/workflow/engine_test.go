package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibook/database/repository"
	"medibook/models"
	"medibook/services/schedule"
)

// 2026-03-02 is a Monday.
const testDate = "2026-03-02"

// stubProcessor lets each test dictate the payment outcome.
type stubProcessor struct {
	mu     sync.Mutex
	err    error
	status string
	calls  int
}

func (p *stubProcessor) Process(_ context.Context, req models.PaymentRequest) (*models.Invoice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	status := p.status
	if status == "" {
		status = "paid"
	}
	return &models.Invoice{
		InvoiceID: "inv-1",
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Status:    status,
	}, nil
}

type testEnv struct {
	deps      Deps
	templates *repository.MemoryTemplateRepo
	bookings  *repository.MemoryBookingRepo
	processor *stubProcessor
	generator *schedule.Generator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	templates := repository.NewMemoryTemplateRepo()
	require.NoError(t, templates.ReplaceWeek(context.Background(), "doc-1", []models.WeeklyTemplate{{
		Weekday:             time.Monday,
		IsWorkingDay:        true,
		WorkingHours:        models.TimeRange{Start: "08:00", End: "12:00"},
		SlotDurationMinutes: 30,
	}}))
	gen := schedule.NewGenerator(templates, repository.NewMemoryExceptionRepo(), repository.NewMemoryReservationRepo())
	bookings := repository.NewMemoryBookingRepo()
	processor := &stubProcessor{}
	return &testEnv{
		deps: Deps{
			Generator: gen,
			Bookings:  bookings,
			Payments:  processor,
		},
		templates: templates,
		bookings:  bookings,
		processor: processor,
		generator: gen,
	}
}

func validPatient() models.PatientInformation {
	return models.PatientInformation{
		FullName:    "Jordan Reyes",
		PhoneNumber: "+1-555-0100",
		Email:       "jordan@example.com",
		Address:     "12 Main St",
		EmergencyContact: models.EmergencyContact{
			FullName:    "Sam Reyes",
			PhoneNumber: "+1-555-0101",
		},
		ChiefComplaint:        "recurring headaches",
		TreatmentConsent:      true,
		DataProcessingConsent: true,
	}
}

// fillEngine walks a session through every pre-commit step.
func fillEngine(t *testing.T, e *Engine, env *testEnv) models.TimeSlot {
	t.Helper()
	e.SelectDoctor("doc-1", "clinic-1")
	e.SelectAppointmentType("consultation")
	e.SelectDate(testDate)

	sched, err := env.generator.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	require.NotEmpty(t, sched.TimeSlots)
	slot := sched.TimeSlots[2]
	e.SelectTimeSlot(slot)
	e.SetPatientInformation(validPatient())
	e.SetPaymentInformation(models.PaymentInformation{Method: models.PaymentMethodCash})
	return slot
}

func TestEngine_StepNavigation(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)

	assert.Equal(t, models.StepDoctorSelection, e.State().CurrentStep)

	// Advancing past an incomplete step is refused.
	err := e.GoToNextStep()
	var unreachable *ErrStepUnreachable
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, models.StepDoctorSelection, unreachable.Missing)

	e.SelectDoctor("doc-1", "")
	require.NoError(t, e.GoToNextStep())
	assert.Equal(t, models.StepAppointmentType, e.State().CurrentStep)

	// Jumping ahead names the first missing prerequisite.
	err = e.GoToStep(models.StepPatientInformation)
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, models.StepAppointmentType, unreachable.Missing)

	// Going back is always allowed.
	require.NoError(t, e.GoToPreviousStep())
	assert.Equal(t, models.StepDoctorSelection, e.State().CurrentStep)
	require.ErrorAs(t, e.GoToPreviousStep(), &unreachable)
}

func TestEngine_RandomAccessToCompletedSteps(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	fillEngine(t, e, env)

	require.NoError(t, e.GoToStep(models.StepInsuranceVerification))
	require.NoError(t, e.GoToStep(models.StepDateSelection))
	require.NoError(t, e.GoToStep(models.StepBookingConfirmation))

	err := e.GoToStep("no-such-step")
	var unreachable *ErrStepUnreachable
	require.ErrorAs(t, err, &unreachable)
}

func TestEngine_DateChangeInvalidatesSlot(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	fillEngine(t, e, env)

	e.SelectDate("2026-03-09")

	state := e.State()
	assert.Nil(t, state.SelectedSlot)
	assert.NotContains(t, state.CompletedSteps, models.StepTimeSelection)
	// Every other completed step survives the cascade.
	assert.Contains(t, state.CompletedSteps, models.StepDateSelection)
	assert.Contains(t, state.CompletedSteps, models.StepPatientInformation)

	// Re-selecting the same date does not invalidate anything.
	sched, err := env.generator.GenerateDailySchedule(context.Background(), "doc-1", "2026-03-09")
	require.NoError(t, err)
	e.SelectTimeSlot(sched.TimeSlots[0])
	e.SelectDate("2026-03-09")
	assert.NotNil(t, e.State().SelectedSlot)
}

func TestEngine_ValidatePatientInformation(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	require.NoError(t, e.GoToStep(models.StepDoctorSelection))

	patient := validPatient()
	patient.EmergencyContact.PhoneNumber = ""
	patient.Email = "not-an-email"
	patient.TreatmentConsent = false
	e.SetPatientInformation(patient)
	e.currentStep = models.StepPatientInformation

	result := e.ValidateCurrentStep()
	assert.False(t, result.IsValid)

	fields := make(map[string]string)
	for _, fe := range result.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Contains(t, fields, "emergencyContact.phoneNumber")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "treatmentConsent")
	assert.NotContains(t, fields, "fullName")
}

func TestEngine_ValidatePaymentMethods(t *testing.T) {
	tests := []struct {
		name      string
		info      models.PaymentInformation
		wantValid bool
		wantField string
	}{
		{"cash ok", models.PaymentInformation{Method: models.PaymentMethodCash}, true, ""},
		{"pay at clinic ok", models.PaymentInformation{Method: models.PaymentMethodPayAtClinic}, true, ""},
		{"card needs token", models.PaymentInformation{Method: models.PaymentMethodCard}, false, "cardToken"},
		{"card with token ok", models.PaymentInformation{Method: models.PaymentMethodCard, CardToken: "pm_123"}, true, ""},
		{"insurance needs policy", models.PaymentInformation{Method: models.PaymentMethodInsurance, InsuranceProvider: "Acme"}, false, "insurance"},
		{"unknown method", models.PaymentInformation{Method: "barter"}, false, "paymentMethod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			e := NewEngine("s-1", env.deps)
			e.SetPaymentInformation(tt.info)
			e.currentStep = models.StepInsuranceVerification

			result := e.ValidateCurrentStep()
			assert.Equal(t, tt.wantValid, result.IsValid)
			if !tt.wantValid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantField, result.Errors[0].Field)
			}
		})
	}
}

func TestSubmitBooking_Success(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	slot := fillEngine(t, e, env)
	env.processor.status = "pending" // cash settles at the clinic

	booking, err := e.SubmitBooking(context.Background())
	require.NoError(t, err)
	assert.Equal(t, slot.ID, booking.SlotID)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
	assert.Equal(t, models.PaymentPending, booking.PaymentStatus)
	assert.Equal(t, "Jordan Reyes", booking.PatientName)
	assert.Equal(t, slot.Price, booking.Price)

	scheduledAt := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).Add(time.Duration(slot.Start) * time.Minute)
	assert.Equal(t, scheduledAt.Add(-CancellationDeadlineOffset), booking.CancellationDeadline)

	state := e.State()
	assert.Equal(t, models.StepBookingSuccess, state.CurrentStep)
	require.NotNil(t, state.ConfirmedBooking)
	assert.Equal(t, booking.ID, state.ConfirmedBooking.ID)

	persisted, err := env.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, persisted.Status)

	// The slot is no longer offered.
	sched, err := env.generator.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	assert.False(t, sched.SlotByID(slot.ID).Available)
}

func TestSubmitBooking_PaidCard(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	fillEngine(t, e, env)
	e.SetPaymentInformation(models.PaymentInformation{Method: models.PaymentMethodCard, CardToken: "pm_123"})
	env.processor.status = "paid"

	booking, err := e.SubmitBooking(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, booking.PaymentStatus)
}

func TestSubmitBooking_IncompleteFlow(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	e.SelectDoctor("doc-1", "")

	_, err := e.SubmitBooking(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)
	assert.Zero(t, env.processor.calls, "payment must not run for an invalid booking")
	assert.Equal(t, models.StepDoctorSelection, e.State().CurrentStep)
}

func TestSubmitBooking_SlotConflictKeepsStep(t *testing.T) {
	env := newTestEnv(t)

	first := NewEngine("s-1", env.deps)
	slot := fillEngine(t, first, env)
	_, err := first.SubmitBooking(context.Background())
	require.NoError(t, err)

	second := NewEngine("s-2", env.deps)
	fillEngine(t, second, env)
	second.SelectTimeSlot(slot) // same slot as the first session

	_, err = second.SubmitBooking(context.Background())
	var conflict *schedule.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, slot.ID, conflict.SlotID)

	// The losing session stays where it was, ready to re-run time selection.
	state := second.State()
	assert.NotEqual(t, models.StepBookingSuccess, state.CurrentStep)
	assert.Nil(t, state.ConfirmedBooking)
}

func TestSubmitBooking_ConcurrentSessionsOneWinner(t *testing.T) {
	env := newTestEnv(t)

	sched, err := env.generator.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	slot := sched.TimeSlots[0]

	const sessions = 16
	var wg sync.WaitGroup
	results := make([]error, sessions)
	for i := 0; i < sessions; i++ {
		e := NewEngine("s-"+string(rune('a'+i)), env.deps)
		fillEngine(t, e, env)
		e.SelectTimeSlot(slot)
		wg.Add(1)
		go func(i int, e *Engine) {
			defer wg.Done()
			_, results[i] = e.SubmitBooking(context.Background())
		}(i, e)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		var conflict *schedule.SlotConflictError
		require.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, winners)
}

func TestSubmitBooking_PaymentFailureKeepsReservation(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	slot := fillEngine(t, e, env)
	env.processor.err = errors.New("gateway timeout")

	_, err := e.SubmitBooking(context.Background())
	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	require.NotEmpty(t, perr.BookingID)

	// The booking is persisted pending, and the slot stays held.
	persisted, err := env.bookings.GetByID(context.Background(), perr.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, persisted.Status)
	assert.Equal(t, models.PaymentPending, persisted.PaymentStatus)

	sched, err := env.generator.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	assert.False(t, sched.SlotByID(slot.ID).Available)

	assert.NotEqual(t, models.StepBookingSuccess, e.State().CurrentStep)
}

func TestCancelBooking(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	slot := fillEngine(t, e, env)

	booking, err := e.SubmitBooking(context.Background())
	require.NoError(t, err)

	require.NoError(t, e.CancelBooking(context.Background(), booking.ID))

	persisted, err := env.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, persisted.Status)
	assert.Equal(t, models.PaymentRefunded, persisted.PaymentStatus)

	// The slot is bookable again.
	sched, err := env.generator.GenerateDailySchedule(context.Background(), "doc-1", testDate)
	require.NoError(t, err)
	assert.True(t, sched.SlotByID(slot.ID).Available)

	// Cancelling twice is a no-op.
	require.NoError(t, e.CancelBooking(context.Background(), booking.ID))
}

func TestCancelBooking_PastDeadline(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	fillEngine(t, e, env)

	booking, err := e.SubmitBooking(context.Background())
	require.NoError(t, err)

	// Force the deadline into the past.
	require.NoError(t, env.bookings.Create(context.Background(), &models.AppointmentBooking{
		ID:                   booking.ID,
		SlotID:               booking.SlotID,
		Status:               booking.Status,
		CancellationDeadline: time.Now().Add(-time.Minute),
	}))

	err = e.CancelBooking(context.Background(), booking.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline")
}

func TestEngine_ResetFlow(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	fillEngine(t, e, env)
	require.NoError(t, e.GoToStep(models.StepBookingConfirmation))

	e.ResetFlow()

	state := e.State()
	assert.Equal(t, models.StepDoctorSelection, state.CurrentStep)
	assert.Empty(t, state.CompletedSteps)
	assert.Empty(t, state.DoctorID)
	assert.Nil(t, state.SelectedSlot)
	assert.Nil(t, state.Patient)
	assert.Empty(t, state.PaymentMethod)
	assert.Equal(t, "s-1", state.SessionID, "identity survives a reset")
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	e := NewEngine("s-1", env.deps)
	slot := fillEngine(t, e, env)
	e.SetPaymentInformation(models.PaymentInformation{
		Method:       models.PaymentMethodCard,
		CardToken:    "pm_secret",
		CardHolder:   "Jordan Reyes",
		PolicyNumber: "POL-9",
	})
	require.NoError(t, e.GoToStep(models.StepInsuranceVerification))

	snap := e.Snapshot()
	assert.Equal(t, models.PaymentMethodCard, snap.PaymentMethod)

	restored := RestoreEngine(snap, env.deps)
	state := restored.State()
	assert.Equal(t, "s-1", state.SessionID)
	assert.Equal(t, models.StepInsuranceVerification, state.CurrentStep)
	assert.Equal(t, "doc-1", state.DoctorID)
	require.NotNil(t, state.SelectedSlot)
	assert.Equal(t, slot.ID, state.SelectedSlot.ID)
	require.NotNil(t, state.Patient)
	assert.Equal(t, "Jordan Reyes", state.Patient.FullName)

	// Card details do not survive the round trip; only the method does.
	assert.Equal(t, models.PaymentMethodCard, state.PaymentMethod)
	restored.mu.Lock()
	assert.Empty(t, restored.paymentInfo.CardToken)
	assert.Empty(t, restored.paymentInfo.PolicyNumber)
	restored.mu.Unlock()
}
