package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"medibook/models"
)

const TypeAppointmentReminder = "reminder:appointment"

// DefaultReminderLead is how long before the appointment the reminder fires.
const DefaultReminderLead = 24 * time.Hour

// ReminderPayload is the task body delivered to the reminder worker.
type ReminderPayload struct {
	BookingID   string `json:"bookingId"`
	ProviderID  string `json:"providerId"`
	PatientName string `json:"patientName"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
}

func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// Scheduler enqueues appointment reminders on the asynq queue.
type Scheduler struct {
	Client *asynq.Client
	Lead   time.Duration
}

func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{Client: client, Lead: DefaultReminderLead}
}

// ScheduleAppointmentReminder queues a reminder ahead of the appointment. A
// booking too close to its start fires the reminder immediately.
func (s *Scheduler) ScheduleAppointmentReminder(booking models.AppointmentBooking) error {
	day, err := time.Parse("2006-01-02", booking.Date)
	if err != nil {
		return fmt.Errorf("bad booking date %q: %w", booking.Date, err)
	}
	scheduledAt := day.Add(time.Duration(booking.Start) * time.Minute)
	fireAt := scheduledAt.Add(-s.Lead)
	if fireAt.Before(time.Now()) {
		fireAt = time.Now()
	}

	task, opts, err := NewReminderTask(ReminderPayload{
		BookingID:   booking.ID,
		ProviderID:  booking.ProviderID,
		PatientName: booking.PatientName,
		Date:        booking.Date,
		StartTime:   fmt.Sprintf("%02d:%02d", booking.Start/60, booking.Start%60),
	}, fireAt)
	if err != nil {
		return err
	}
	if _, err := s.Client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}
