package repository

import (
	"context"
	"sync"
	"time"

	"medibook/models"
)

// In-memory implementations. They back single-process deployments and tests;
// the Mongo implementations are the durable counterparts.

type MemoryTemplateRepo struct {
	mu        sync.RWMutex
	templates map[string]map[time.Weekday]models.WeeklyTemplate // providerID -> weekday
}

func NewMemoryTemplateRepo() *MemoryTemplateRepo {
	return &MemoryTemplateRepo{templates: make(map[string]map[time.Weekday]models.WeeklyTemplate)}
}

func (r *MemoryTemplateRepo) GetTemplate(_ context.Context, providerID string, weekday time.Weekday) (*models.WeeklyTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	week, ok := r.templates[providerID]
	if !ok {
		return nil, ErrNotFound
	}
	tpl, ok := week[weekday]
	if !ok {
		// Provider exists but has no template for this weekday: treat as a
		// non-working day rather than an unknown provider.
		return &models.WeeklyTemplate{ProviderID: providerID, Weekday: weekday, IsWorkingDay: false}, nil
	}
	out := tpl
	return &out, nil
}

func (r *MemoryTemplateRepo) ReplaceWeek(_ context.Context, providerID string, templates []models.WeeklyTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	week := make(map[time.Weekday]models.WeeklyTemplate, len(templates))
	for _, tpl := range templates {
		tpl.ProviderID = providerID
		week[tpl.Weekday] = tpl
	}
	r.templates[providerID] = week
	return nil
}

func (r *MemoryTemplateRepo) HasProvider(_ context.Context, providerID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[providerID]
	return ok, nil
}

type exceptionKey struct {
	providerID string
	date       string
}

type MemoryExceptionRepo struct {
	mu         sync.RWMutex
	exceptions map[exceptionKey]models.CalendarException
}

func NewMemoryExceptionRepo() *MemoryExceptionRepo {
	return &MemoryExceptionRepo{exceptions: make(map[exceptionKey]models.CalendarException)}
}

func (r *MemoryExceptionRepo) GetException(_ context.Context, providerID, date string) (*models.CalendarException, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exc, ok := r.exceptions[exceptionKey{providerID, date}]
	if !ok {
		return nil, ErrNotFound
	}
	out := exc
	return &out, nil
}

func (r *MemoryExceptionRepo) PutException(_ context.Context, exc models.CalendarException) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exceptions[exceptionKey{exc.ProviderID, exc.Date}] = exc
	return nil
}

func (r *MemoryExceptionRepo) DeleteException(_ context.Context, providerID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.exceptions, exceptionKey{providerID, date})
	return nil
}

type MemoryReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]models.SlotReservation // keyed by slot id
}

func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{reservations: make(map[string]models.SlotReservation)}
}

// Reserve holds the mutex across check and insert, so the reserve-if-free is
// atomic for concurrent sessions racing on the same slot.
func (r *MemoryReservationRepo) Reserve(_ context.Context, res models.SlotReservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.reservations[res.SlotID]; taken {
		return ErrSlotTaken
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	r.reservations[res.SlotID] = res
	return nil
}

func (r *MemoryReservationRepo) Release(_ context.Context, slotID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[slotID]; !ok {
		return ErrNotFound
	}
	delete(r.reservations, slotID)
	return nil
}

func (r *MemoryReservationRepo) ListForDate(_ context.Context, providerID, date string) ([]models.SlotReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SlotReservation
	for _, res := range r.reservations {
		if res.ProviderID == providerID && res.Date == date {
			out = append(out, res)
		}
	}
	return out, nil
}

type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.AppointmentBooking
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]models.AppointmentBooking)}
}

func (r *MemoryBookingRepo) Create(_ context.Context, booking *models.AppointmentBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *MemoryBookingRepo) GetByID(_ context.Context, id string) (*models.AppointmentBooking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := b
	return &out, nil
}

func (r *MemoryBookingRepo) UpdateStatus(_ context.Context, id, status, paymentStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	if paymentStatus != "" {
		b.PaymentStatus = paymentStatus
	}
	r.bookings[id] = b
	return nil
}
