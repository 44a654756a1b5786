package models

import "time"

// PaymentRequest is handed to the payment processor after a slot is reserved.
type PaymentRequest struct {
	BookingID string  `json:"bookingId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Method    string  `json:"method"`
	CardToken string  `json:"cardToken,omitempty"`
}

// Invoice is the processor's opaque result. Status "pending" is a valid
// terminal-but-unsettled outcome, not a retry signal.
type Invoice struct {
	InvoiceID string    `json:"invoiceId"`
	BookingID string    `json:"bookingId"`
	PaymentID string    `json:"paymentId,omitempty"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Method    string    `json:"method"`
	Status    string    `json:"status"` // "paid", "pending", "failed"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
