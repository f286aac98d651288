package models

import (
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// AppointmentAction is the scheduling operation recorded on an appointment.
type AppointmentAction string

const (
	ActionBooked      AppointmentAction = "booked"
	ActionRescheduled AppointmentAction = "rescheduled"
	ActionCancelled   AppointmentAction = "cancelled"
)

// AppointmentStatus tracks whether the record is still live.
type AppointmentStatus string

const (
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a scheduling record.  The appointment handler is a
// stand-in for a real scheduling backend: records are internally consistent
// but never verified against a calendar.
type Appointment struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Doctor    string            `json:"doctor"`
	When      string            `json:"when"`
	Action    AppointmentAction `json:"action"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewAppointment creates a confirmed appointment record.
func NewAppointment(userID, doctor, when string, action AppointmentAction) *Appointment {
	return &Appointment{
		ID:        "APT-" + shortuuid.New(),
		UserID:    userID,
		Doctor:    doctor,
		When:      when,
		Action:    action,
		Status:    AppointmentConfirmed,
		CreatedAt: time.Now().UTC(),
	}
}
