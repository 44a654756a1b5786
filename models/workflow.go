package models

// Step identifies one stage of the booking wizard.
type Step string

const (
	StepDoctorSelection       Step = "doctor-selection"
	StepAppointmentType       Step = "appointment-type"
	StepDateSelection         Step = "date-selection"
	StepTimeSelection         Step = "time-selection"
	StepPatientInformation    Step = "patient-information"
	StepInsuranceVerification Step = "insurance-verification"
	StepBookingConfirmation   Step = "booking-confirmation"
	StepBookingSuccess        Step = "booking-success"
)

// StepOrder is the linear forward order of the wizard. A step is reachable
// only when every step before it has been completed.
var StepOrder = []Step{
	StepDoctorSelection,
	StepAppointmentType,
	StepDateSelection,
	StepTimeSelection,
	StepPatientInformation,
	StepInsuranceVerification,
	StepBookingConfirmation,
	StepBookingSuccess,
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StepValidation is the structured result of validating one step. It
// annotates state for display and never mutates selections.
type StepValidation struct {
	IsValid  bool         `json:"isValid"`
	Errors   []FieldError `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// WorkflowState is the read-only view of a booking session exposed to callers.
type WorkflowState struct {
	SessionID         string              `json:"sessionId"`
	CurrentStep       Step                `json:"currentStep"`
	CompletedSteps    []Step              `json:"completedSteps"`
	DoctorID          string              `json:"doctorId,omitempty"`
	ClinicID          string              `json:"clinicId,omitempty"`
	AppointmentTypeID string              `json:"appointmentTypeId,omitempty"`
	Date              string              `json:"date,omitempty"`
	SelectedSlot      *TimeSlot           `json:"selectedSlot,omitempty"`
	Patient           *PatientInformation `json:"patient,omitempty"`
	PaymentMethod     string              `json:"paymentMethod,omitempty"`
	ValidationResult  *StepValidation     `json:"validationResult,omitempty"`
	ConfirmedBooking  *AppointmentBooking `json:"confirmedBooking,omitempty"`
}

// WorkflowSnapshot is the persistable subset of a booking session. It is an
// explicit allow-list: card details and insurance specifics never enter the
// durable store — only selection identifiers, patient information and the
// chosen slot survive a session restart.
type WorkflowSnapshot struct {
	SessionID         string              `json:"sessionId"`
	CurrentStep       Step                `json:"currentStep"`
	CompletedSteps    []Step              `json:"completedSteps"`
	DoctorID          string              `json:"doctorId,omitempty"`
	ClinicID          string              `json:"clinicId,omitempty"`
	AppointmentTypeID string              `json:"appointmentTypeId,omitempty"`
	Date              string              `json:"date,omitempty"`
	SelectedSlot      *TimeSlot           `json:"selectedSlot,omitempty"`
	Patient           *PatientInformation `json:"patient,omitempty"`
	PaymentMethod     string              `json:"paymentMethod,omitempty"`
}
