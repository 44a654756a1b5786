package workflow

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"medibook/models"
)

// ValidateCurrentStep runs the current step's required-field checks. It never
// mutates selections; the result is stored for display and returned.
func (e *Engine) ValidateCurrentStep() models.StepValidation {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := e.validateStep(e.currentStep)
	e.lastValidation = &result
	return result
}

// validateStep dispatches to the step's checks. Caller holds mu.
func (e *Engine) validateStep(step models.Step) models.StepValidation {
	var errs []models.FieldError
	var warnings []string

	switch step {
	case models.StepDoctorSelection:
		if e.doctorID == "" {
			errs = append(errs, models.FieldError{Field: "doctorId", Message: "a doctor must be selected"})
		}
	case models.StepAppointmentType:
		if e.appointmentTypeID == "" {
			errs = append(errs, models.FieldError{Field: "appointmentTypeId", Message: "an appointment type must be selected"})
		}
	case models.StepDateSelection:
		if e.date == "" {
			errs = append(errs, models.FieldError{Field: "date", Message: "a date must be selected"})
		}
	case models.StepTimeSelection:
		if e.selectedSlot == nil {
			errs = append(errs, models.FieldError{Field: "slotId", Message: "a time slot must be selected"})
		} else if e.selectedSlot.Date != e.date {
			errs = append(errs, models.FieldError{Field: "slotId", Message: "selected slot does not belong to the selected date"})
		}
	case models.StepPatientInformation:
		errs = append(errs, e.validatePatient()...)
	case models.StepInsuranceVerification:
		errs = append(errs, e.validatePayment()...)
	case models.StepBookingConfirmation, models.StepBookingSuccess:
		// Confirmation is validated in full by SubmitBooking.
	}

	return models.StepValidation{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

func (e *Engine) validatePatient() []models.FieldError {
	if e.patient == nil {
		return []models.FieldError{{Field: "patient", Message: "patient information is required"}}
	}

	var errs []models.FieldError
	if err := e.validate.Struct(e.patient); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, models.FieldError{
					Field:   fieldPath(fe),
					Message: validationMessage(fe),
				})
			}
		} else {
			errs = append(errs, models.FieldError{Field: "patient", Message: err.Error()})
		}
	}
	if !e.patient.TreatmentConsent {
		errs = append(errs, models.FieldError{Field: "treatmentConsent", Message: "treatment consent is required"})
	}
	if !e.patient.DataProcessingConsent {
		errs = append(errs, models.FieldError{Field: "dataProcessingConsent", Message: "data processing consent is required"})
	}
	return errs
}

func (e *Engine) validatePayment() []models.FieldError {
	if e.paymentInfo == nil {
		return []models.FieldError{{Field: "paymentMethod", Message: "a payment method is required"}}
	}
	switch e.paymentInfo.Method {
	case models.PaymentMethodCard:
		if e.paymentInfo.CardToken == "" {
			return []models.FieldError{{Field: "cardToken", Message: "a card token is required for card payments"}}
		}
	case models.PaymentMethodInsurance:
		if e.paymentInfo.InsuranceProvider == "" || e.paymentInfo.PolicyNumber == "" {
			return []models.FieldError{{Field: "insurance", Message: "insurance provider and policy number are required"}}
		}
	case models.PaymentMethodCash, models.PaymentMethodPayAtClinic:
	default:
		return []models.FieldError{{Field: "paymentMethod", Message: "unsupported payment method: " + e.paymentInfo.Method}}
	}
	return nil
}

// fieldPath turns a validator namespace like
// "PatientInformation.EmergencyContact.PhoneNumber" into
// "emergencyContact.phoneNumber".
func fieldPath(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:] // drop the root struct name
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	default:
		return "failed validation rule: " + fe.Tag()
	}
}
