package models

// EmergencyContact is required in full before patient information validates.
type EmergencyContact struct {
	FullName     string `json:"fullName" validate:"required"`
	PhoneNumber  string `json:"phoneNumber" validate:"required"`
	Relationship string `json:"relationship,omitempty"`
}

// PatientInformation is collected on the patient-information step.
type PatientInformation struct {
	FullName              string           `json:"fullName" validate:"required"`
	PhoneNumber           string           `json:"phoneNumber" validate:"required"`
	Email                 string           `json:"email,omitempty" validate:"omitempty,email"`
	Address               string           `json:"address" validate:"required"`
	DateOfBirth           string           `json:"dateOfBirth,omitempty"`
	EmergencyContact      EmergencyContact `json:"emergencyContact"`
	ChiefComplaint        string           `json:"chiefComplaint" validate:"required"`
	TreatmentConsent      bool             `json:"treatmentConsent"`
	DataProcessingConsent bool             `json:"dataProcessingConsent"`
}

// Payment methods accepted on the insurance-verification step.
const (
	PaymentMethodCard        = "card"
	PaymentMethodCash        = "cash"
	PaymentMethodInsurance   = "insurance"
	PaymentMethodPayAtClinic = "pay-at-clinic"
)

// PaymentInformation is collected in-session only. Card fields and insurance
// specifics are never written to a durable store; see WorkflowSnapshot.
type PaymentInformation struct {
	Method            string `json:"method"`
	CardToken         string `json:"cardToken,omitempty"`
	CardHolder        string `json:"cardHolder,omitempty"`
	InsuranceProvider string `json:"insuranceProvider,omitempty"`
	PolicyNumber      string `json:"policyNumber,omitempty"`
}
