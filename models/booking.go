package models

import "time"

// Appointment lifecycle statuses.
const (
	BookingPending     = "pending"
	BookingConfirmed   = "confirmed"
	BookingCancelled   = "cancelled"
	BookingCompleted   = "completed"
	BookingNoShow      = "no-show"
	BookingRescheduled = "rescheduled"
)

// Payment settlement statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"
)

// AppointmentBooking is the immutable record produced by a successful commit.
// External collaborators receive it by value and must not mutate it; the slot
// it consumes belongs to this booking until cancellation releases it.
type AppointmentBooking struct {
	ID                   string    `bson:"id" json:"id"`
	ProviderID           string    `bson:"providerId" json:"providerId"`
	ClinicID             string    `bson:"clinicId,omitempty" json:"clinicId,omitempty"`
	AppointmentTypeID    string    `bson:"appointmentTypeId" json:"appointmentTypeId"`
	SlotID               string    `bson:"slotId" json:"slotId"`
	Date                 string    `bson:"date" json:"date"` // "2006-01-02"
	Start                int       `bson:"start" json:"start"`
	End                  int       `bson:"end" json:"end"`
	DurationMinutes      int       `bson:"durationMinutes" json:"durationMinutes"`
	PatientName          string    `bson:"patientName" json:"patientName"`
	PatientPhone         string    `bson:"patientPhone" json:"patientPhone"`
	Price                float64   `bson:"price" json:"price"`
	Status               string    `bson:"status" json:"status"`
	PaymentStatus        string    `bson:"paymentStatus" json:"paymentStatus"`
	CancellationDeadline time.Time `bson:"cancellationDeadline" json:"cancellationDeadline"`
	CreatedAt            time.Time `bson:"createdAt" json:"createdAt"`
}
