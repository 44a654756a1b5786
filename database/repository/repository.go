package repository

import (
	"context"
	"errors"
	"time"

	"medibook/models"
)

// Sentinel errors shared by all repository implementations.
var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrSlotTaken is returned when a reservation loses the compare-and-swap.
	ErrSlotTaken = errors.New("repository: slot already reserved")
)

// TemplateRepository holds each provider's recurring weekly templates.
type TemplateRepository interface {
	GetTemplate(ctx context.Context, providerID string, weekday time.Weekday) (*models.WeeklyTemplate, error)
	// ReplaceWeek swaps a provider's full weekly setup in one shot.
	ReplaceWeek(ctx context.Context, providerID string, templates []models.WeeklyTemplate) error
	HasProvider(ctx context.Context, providerID string) (bool, error)
}

// ExceptionRepository is the date-keyed calendar exception store.
type ExceptionRepository interface {
	GetException(ctx context.Context, providerID, date string) (*models.CalendarException, error)
	PutException(ctx context.Context, exc models.CalendarException) error
	DeleteException(ctx context.Context, providerID, date string) error
}

// ReservationRepository is the slot reservation ledger. Reserve must be an
// atomic "reserve if still free" operation: two concurrent reservations for
// the same slot id must leave exactly one winner, the loser gets ErrSlotTaken.
type ReservationRepository interface {
	Reserve(ctx context.Context, res models.SlotReservation) error
	Release(ctx context.Context, slotID string) error
	ListForDate(ctx context.Context, providerID, date string) ([]models.SlotReservation, error)
}

// BookingRepository persists appointment records after commit.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.AppointmentBooking) error
	GetByID(ctx context.Context, id string) (*models.AppointmentBooking, error)
	UpdateStatus(ctx context.Context, id, status, paymentStatus string) error
}
