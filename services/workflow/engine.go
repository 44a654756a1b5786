package workflow

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"medibook/database/repository"
	"medibook/models"
	"medibook/services/payment"
	"medibook/services/schedule"
)

// ReminderScheduler queues an appointment reminder after a successful commit.
type ReminderScheduler interface {
	ScheduleAppointmentReminder(booking models.AppointmentBooking) error
}

// Engine is one patient session's booking workflow: an ordered step machine
// with random access to completed steps. Each session owns its own Engine
// instance; there is no process-wide shared state. Mutating calls on one
// instance are serialized by the internal mutex.
type Engine struct {
	mu sync.Mutex

	sessionID string
	generator *schedule.Generator
	bookings  repository.BookingRepository
	payments  payment.Processor
	reminders ReminderScheduler
	validate  *validator.Validate
	logger    *zap.Logger

	currentStep       models.Step
	completed         map[models.Step]bool
	doctorID          string
	clinicID          string
	appointmentTypeID string
	date              string
	selectedSlot      *models.TimeSlot
	patient           *models.PatientInformation
	paymentInfo       *models.PaymentInformation
	lastValidation    *models.StepValidation
	confirmedBooking  *models.AppointmentBooking
	submitting        bool
}

// Deps carries the collaborators an Engine needs. Reminders may be nil.
type Deps struct {
	Generator *schedule.Generator
	Bookings  repository.BookingRepository
	Payments  payment.Processor
	Reminders ReminderScheduler
	Logger    *zap.Logger
}

func NewEngine(sessionID string, deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sessionID:   sessionID,
		generator:   deps.Generator,
		bookings:    deps.Bookings,
		payments:    deps.Payments,
		reminders:   deps.Reminders,
		validate:    validator.New(),
		logger:      logger,
		currentStep: models.StepDoctorSelection,
		completed:   make(map[models.Step]bool),
	}
}

// SessionID identifies this workflow instance.
func (e *Engine) SessionID() string { return e.sessionID }

// SelectDoctor records the provider (and clinic) choice and completes the
// doctor-selection step. Like every selection, it does not advance the
// current step; stepping is an explicit, separate transition.
func (e *Engine) SelectDoctor(doctorID, clinicID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doctorID = doctorID
	e.clinicID = clinicID
	e.completed[models.StepDoctorSelection] = true
}

// SelectAppointmentType records the appointment type choice.
func (e *Engine) SelectAppointmentType(appointmentTypeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.appointmentTypeID = appointmentTypeID
	e.completed[models.StepAppointmentType] = true
}

// SelectDate records the date choice. Changing the date clears any slot
// selection: the dependent time-selection step is un-completed so a stale
// slot can never reach commit. This is the one cascade-invalidation rule.
func (e *Engine) SelectDate(date string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.date != date {
		e.selectedSlot = nil
		delete(e.completed, models.StepTimeSelection)
	}
	e.date = date
	e.completed[models.StepDateSelection] = true
}

// SelectTimeSlot records the chosen slot.
func (e *Engine) SelectTimeSlot(slot models.TimeSlot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := slot
	e.selectedSlot = &s
	e.completed[models.StepTimeSelection] = true
}

// SetPatientInformation records the patient profile.
func (e *Engine) SetPatientInformation(info models.PatientInformation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := info
	e.patient = &p
	e.completed[models.StepPatientInformation] = true
}

// SetPaymentInformation records the payment method and completes the
// insurance-verification step. Card details stay in memory only.
func (e *Engine) SetPaymentInformation(info models.PaymentInformation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := info
	e.paymentInfo = &p
	e.completed[models.StepInsuranceVerification] = true
}

// GoToStep moves to any step whose prerequisites are all completed.
func (e *Engine) GoToStep(step models.Step) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if stepIndex(step) < 0 {
		return &ErrStepUnreachable{Step: step, Missing: step}
	}
	if missing := firstMissingPrerequisite(step, e.completed); missing != "" {
		return &ErrStepUnreachable{Step: step, Missing: missing}
	}
	e.currentStep = step
	return nil
}

// GoToNextStep advances one step forward if the current step is completed.
func (e *Engine) GoToNextStep() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := stepIndex(e.currentStep)
	if idx >= len(models.StepOrder)-1 {
		return &ErrStepUnreachable{Step: e.currentStep, Missing: e.currentStep}
	}
	next := models.StepOrder[idx+1]
	if missing := firstMissingPrerequisite(next, e.completed); missing != "" {
		return &ErrStepUnreachable{Step: next, Missing: missing}
	}
	e.currentStep = next
	return nil
}

// GoToPreviousStep moves one step back; earlier steps are always reachable.
func (e *Engine) GoToPreviousStep() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := stepIndex(e.currentStep)
	if idx <= 0 {
		return &ErrStepUnreachable{Step: e.currentStep, Missing: e.currentStep}
	}
	e.currentStep = models.StepOrder[idx-1]
	return nil
}

// State returns a read-only copy of the session for display.
func (e *Engine) State() models.WorkflowState {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := models.WorkflowState{
		SessionID:         e.sessionID,
		CurrentStep:       e.currentStep,
		CompletedSteps:    e.completedSteps(),
		DoctorID:          e.doctorID,
		ClinicID:          e.clinicID,
		AppointmentTypeID: e.appointmentTypeID,
		Date:              e.date,
	}
	if e.selectedSlot != nil {
		s := *e.selectedSlot
		state.SelectedSlot = &s
	}
	if e.patient != nil {
		p := *e.patient
		state.Patient = &p
	}
	if e.paymentInfo != nil {
		state.PaymentMethod = e.paymentInfo.Method
	}
	if e.lastValidation != nil {
		v := *e.lastValidation
		state.ValidationResult = &v
	}
	if e.confirmedBooking != nil {
		b := *e.confirmedBooking
		state.ConfirmedBooking = &b
	}
	return state
}

// completedSteps returns the completed set in wizard order. Caller holds mu.
func (e *Engine) completedSteps() []models.Step {
	var steps []models.Step
	for _, s := range models.StepOrder {
		if e.completed[s] {
			steps = append(steps, s)
		}
	}
	return steps
}

// ResetFlow clears every selection and returns to the initial step. It is
// the only deliberate destructor of session state.
func (e *Engine) ResetFlow() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentStep = models.StepDoctorSelection
	e.completed = make(map[models.Step]bool)
	e.doctorID = ""
	e.clinicID = ""
	e.appointmentTypeID = ""
	e.date = ""
	e.selectedSlot = nil
	e.patient = nil
	e.paymentInfo = nil
	e.lastValidation = nil
	e.confirmedBooking = nil
}

// Snapshot extracts the persistable allow-list of session state. Card
// details and insurance specifics are deliberately absent.
func (e *Engine) Snapshot() models.WorkflowSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := models.WorkflowSnapshot{
		SessionID:         e.sessionID,
		CurrentStep:       e.currentStep,
		CompletedSteps:    e.completedSteps(),
		DoctorID:          e.doctorID,
		ClinicID:          e.clinicID,
		AppointmentTypeID: e.appointmentTypeID,
		Date:              e.date,
	}
	if e.selectedSlot != nil {
		s := *e.selectedSlot
		snap.SelectedSlot = &s
	}
	if e.patient != nil {
		p := *e.patient
		snap.Patient = &p
	}
	if e.paymentInfo != nil {
		snap.PaymentMethod = e.paymentInfo.Method
	}
	return snap
}

// RestoreEngine rebuilds a session from a persisted snapshot. The payment
// method survives, card details do not; the patient re-enters them.
func RestoreEngine(snap models.WorkflowSnapshot, deps Deps) *Engine {
	e := NewEngine(snap.SessionID, deps)
	e.currentStep = snap.CurrentStep
	if e.currentStep == "" {
		e.currentStep = models.StepDoctorSelection
	}
	for _, s := range snap.CompletedSteps {
		e.completed[s] = true
	}
	e.doctorID = snap.DoctorID
	e.clinicID = snap.ClinicID
	e.appointmentTypeID = snap.AppointmentTypeID
	e.date = snap.Date
	if snap.SelectedSlot != nil {
		s := *snap.SelectedSlot
		e.selectedSlot = &s
	}
	if snap.Patient != nil {
		p := *snap.Patient
		e.patient = &p
	}
	if snap.PaymentMethod != "" {
		e.paymentInfo = &models.PaymentInformation{Method: snap.PaymentMethod}
	}
	return e
}
