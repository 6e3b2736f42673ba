package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы бронирования консультации.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Coach описывает консультанта из публичного каталога.
type Coach struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FullName  string     `db:"full_name" json:"full_name"`
	Specialty *string    `db:"specialty" json:"specialty,omitempty"`
	Bio       *string    `db:"bio" json:"bio,omitempty"`
	PhotoID   *uuid.UUID `db:"photo_id" json:"photo_id,omitempty"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// CoachBooking - бронирование слота у консультанта.
// Один слот у одного консультанта нельзя забронировать дважды.
type CoachBooking struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	CoachID     uuid.UUID `db:"coach_id" json:"coach_id"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	Status      string    `db:"status" json:"status"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
