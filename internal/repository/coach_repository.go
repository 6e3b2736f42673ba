package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/repository/common"
)

// Ошибки бронирования.
var (
	ErrCoachNotFound   = errors.New("coach not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotTaken       = errors.New("slot already booked")
)

// CoachRepository отвечает за таблицы coaches и coach_bookings.
type CoachRepository struct {
	db *sqlx.DB
}

// NewCoachRepository создаёт экземпляр репозитория.
func NewCoachRepository(db *sqlx.DB) *CoachRepository {
	return &CoachRepository{db: db}
}

// ListCoaches возвращает активных консультантов.
func (r *CoachRepository) ListCoaches(ctx context.Context, limit, offset int) ([]models.Coach, error) {
	var coaches []models.Coach
	query := `
		SELECT * FROM coaches
		WHERE is_active = TRUE
		ORDER BY full_name ASC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &coaches, query, limit, offset); err != nil {
		return nil, fmt.Errorf("coach repository: list coaches %w", err)
	}

	return coaches, nil
}

// GetCoachByID возвращает консультанта по идентификатору.
func (r *CoachRepository) GetCoachByID(ctx context.Context, id uuid.UUID) (*models.Coach, error) {
	return common.GetByField[models.Coach](ctx, r.db, "coaches", "id", id, ErrCoachNotFound)
}

// CreateBooking создаёт бронирование. Уникальность (coach_id, scheduled_at)
// не даёт забронировать один слот дважды.
func (r *CoachRepository) CreateBooking(ctx context.Context, booking *models.CoachBooking) error {
	query := `
		INSERT INTO coach_bookings (user_id, coach_id, scheduled_at, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		booking.UserID, booking.CoachID, booking.ScheduledAt, booking.Status, booking.Notes,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("coach repository: create booking %w", err)
	}

	return nil
}

// GetBookingByID возвращает бронирование по идентификатору.
func (r *CoachRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.CoachBooking, error) {
	return common.GetByField[models.CoachBooking](ctx, r.db, "coach_bookings", "id", id, ErrBookingNotFound)
}

// ListBookingsForUser возвращает бронирования пользователя.
func (r *CoachRepository) ListBookingsForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CoachBooking, error) {
	var bookings []models.CoachBooking
	query := `
		SELECT * FROM coach_bookings
		WHERE user_id = $1
		ORDER BY scheduled_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &bookings, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("coach repository: list bookings for user %w", err)
	}

	return bookings, nil
}

// UpdateBookingStatus переводит бронирование в новый статус.
func (r *CoachRepository) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE coach_bookings SET status = $1, updated_at = NOW() WHERE id = $2`, status, bookingID)
	if err != nil {
		return fmt.Errorf("coach repository: update booking status %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("coach repository: update booking status rows affected %w", err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}

	return nil
}
