package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medibook/models"
	"medibook/services/schedule"
)

// CancellationDeadlineOffset is how long before the scheduled time a booking
// may still be cancelled free of charge.
const CancellationDeadlineOffset = 2 * time.Hour

// ValidationError aggregates field-level failures across the whole booking.
// Recoverable: the caller re-prompts the offending step.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		fields[i] = fe.Field
	}
	return "booking validation failed: " + strings.Join(fields, ", ")
}

// PaymentError is the opaque passthrough from the payment collaborator. The
// booking it references stays pending; it is never retried automatically.
type PaymentError struct {
	BookingID string
	Err       error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed for booking %s: %v", e.BookingID, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// SubmitBooking is the single mutating commit path. It re-validates the whole
// booking, re-generates the day's schedule to confirm the chosen slot is
// still free, reserves it atomically, then persists the appointment record.
// On a slot conflict the current step is left unchanged so the caller can
// re-run time selection.
func (e *Engine) SubmitBooking(ctx context.Context) (*models.AppointmentBooking, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.submitting {
		return nil, errors.New("a submit is already in flight for this session")
	}
	e.submitting = true
	defer func() { e.submitting = false }()

	if verr := e.validateCompleteBooking(); verr != nil {
		return nil, verr
	}

	// Commit-time re-check: regenerate and reserve in one compare-and-swap.
	reserved, err := e.generator.ReserveSlot(ctx, e.doctorID, e.date, e.selectedSlot.ID, e.sessionID)
	if err != nil {
		var conflict *schedule.SlotConflictError
		if errors.As(err, &conflict) {
			e.logger.Warn("slot conflict at commit time",
				zap.String("sessionID", e.sessionID),
				zap.String("slotID", e.selectedSlot.ID))
		}
		return nil, err
	}

	booking := e.buildBooking(reserved)

	invoice, payErr := e.payments.Process(ctx, models.PaymentRequest{
		BookingID: booking.ID,
		Amount:    booking.Price,
		Currency:  "USD",
		Method:    e.paymentInfo.Method,
		CardToken: e.paymentInfo.CardToken,
	})
	switch {
	case payErr != nil:
		// The slot stays reserved and the booking stays pending; payment is
		// recoverable and settled out of band.
		booking.Status = models.BookingPending
		booking.PaymentStatus = models.PaymentPending
		if err := e.bookings.Create(ctx, booking); err != nil {
			return nil, fmt.Errorf("failed to persist pending booking: %w", err)
		}
		return nil, &PaymentError{BookingID: booking.ID, Err: payErr}
	case invoice.Status == "paid":
		booking.PaymentStatus = models.PaymentPaid
	default:
		// "pending" is a valid terminal-but-unsettled state (e.g. pay at clinic).
		booking.PaymentStatus = models.PaymentPending
	}

	if err := e.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	if e.reminders != nil {
		if err := e.reminders.ScheduleAppointmentReminder(*booking); err != nil {
			e.logger.Warn("failed to schedule appointment reminder",
				zap.String("bookingID", booking.ID), zap.Error(err))
		}
	}

	e.completed[models.StepBookingConfirmation] = true
	e.currentStep = models.StepBookingSuccess
	e.completed[models.StepBookingSuccess] = true
	b := *booking
	e.confirmedBooking = &b

	e.logger.Info("booking committed",
		zap.String("sessionID", e.sessionID),
		zap.String("bookingID", booking.ID),
		zap.String("slotID", booking.SlotID))
	return booking, nil
}

// buildBooking assembles the immutable appointment record. Caller holds mu.
func (e *Engine) buildBooking(slot *models.TimeSlot) *models.AppointmentBooking {
	day, _ := time.Parse("2006-01-02", slot.Date)
	scheduledAt := day.Add(time.Duration(slot.Start) * time.Minute)
	return &models.AppointmentBooking{
		ID:                   uuid.New().String(),
		ProviderID:           e.doctorID,
		ClinicID:             e.clinicID,
		AppointmentTypeID:    e.appointmentTypeID,
		SlotID:               slot.ID,
		Date:                 slot.Date,
		Start:                slot.Start,
		End:                  slot.End,
		DurationMinutes:      slot.DurationMinutes,
		PatientName:          e.patient.FullName,
		PatientPhone:         e.patient.PhoneNumber,
		Price:                slot.Price,
		Status:               models.BookingConfirmed,
		PaymentStatus:        models.PaymentPending,
		CancellationDeadline: scheduledAt.Add(-CancellationDeadlineOffset),
		CreatedAt:            time.Now(),
	}
}

// validateCompleteBooking requires every step's selection to be present and
// valid before commit. Caller holds mu.
func (e *Engine) validateCompleteBooking() *ValidationError {
	var all []models.FieldError
	for _, step := range models.StepOrder {
		if step == models.StepBookingConfirmation || step == models.StepBookingSuccess {
			continue
		}
		result := e.validateStep(step)
		all = append(all, result.Errors...)
	}
	if len(all) > 0 {
		return &ValidationError{Errors: all}
	}
	return nil
}

// CancelBooking cancels a committed appointment and releases its slot. Past
// the cancellation deadline the booking can no longer be cancelled.
func (e *Engine) CancelBooking(ctx context.Context, bookingID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	booking, err := e.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == models.BookingCancelled {
		return nil
	}
	if time.Now().After(booking.CancellationDeadline) {
		return fmt.Errorf("cancellation deadline for booking %s has passed", bookingID)
	}

	if err := e.bookings.UpdateStatus(ctx, bookingID, models.BookingCancelled, models.PaymentRefunded); err != nil {
		return err
	}
	if err := e.generator.ReleaseSlot(ctx, booking.SlotID); err != nil {
		var nf *schedule.NotFoundError
		if !errors.As(err, &nf) {
			return err
		}
	}
	if e.confirmedBooking != nil && e.confirmedBooking.ID == bookingID {
		e.confirmedBooking.Status = models.BookingCancelled
	}
	return nil
}
