package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/smokefree-backend/internal/logger"
	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
)

// CoachStore описывает зависимости CoachService от хранилища.
type CoachStore interface {
	ListCoaches(ctx context.Context, limit, offset int) ([]models.Coach, error)
	GetCoachByID(ctx context.Context, id uuid.UUID) (*models.Coach, error)
	CreateBooking(ctx context.Context, booking *models.CoachBooking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*models.CoachBooking, error)
	ListBookingsForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CoachBooking, error)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status string) error
}

// Broadcaster отправляет событие пользователю по WebSocket.
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// CoachService управляет каталогом консультантов и бронированием сессий.
type CoachService struct {
	repo CoachStore
	hub  Broadcaster
}

// BookingInput содержит данные для бронирования.
type BookingInput struct {
	CoachID     string
	ScheduledAt string
	Note        string
}

// NewCoachService создаёт сервис консультаций.
func NewCoachService(repo CoachStore, hub Broadcaster) *CoachService {
	return &CoachService{repo: repo, hub: hub}
}

// ListCoaches возвращает каталог активных консультантов.
func (s *CoachService) ListCoaches(ctx context.Context, limit, offset int) ([]models.Coach, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListCoaches(ctx, limit, offset)
}

// GetCoach возвращает консультанта по идентификатору.
func (s *CoachService) GetCoach(ctx context.Context, id uuid.UUID) (*models.Coach, error) {
	coach, err := s.repo.GetCoachByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCoachNotFound) {
			return nil, apperror.ErrCoachNotFound
		}
		return nil, err
	}
	return coach, nil
}

// CreateBooking бронирует слот у консультанта. Занятый слот отклоняется
// на уровне БД, гонки за один слот исключены.
func (s *CoachService) CreateBooking(ctx context.Context, userID uuid.UUID, in BookingInput) (*models.CoachBooking, error) {
	coachID, err := uuid.Parse(in.CoachID)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор консультанта")
	}

	scheduledAt, err := time.Parse(time.RFC3339, in.ScheduledAt)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "время сессии должно быть в формате RFC3339")
	}
	if !scheduledAt.After(time.Now()) {
		return nil, apperror.New(apperror.ErrCodeValidation, "время сессии должно быть в будущем")
	}

	coach, err := s.repo.GetCoachByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrCoachNotFound) {
			return nil, apperror.ErrCoachNotFound
		}
		return nil, err
	}
	if !coach.IsActive {
		return nil, apperror.ErrCoachNotFound
	}

	booking := &models.CoachBooking{
		UserID:      userID,
		CoachID:     coachID,
		ScheduledAt: scheduledAt,
		Status:      models.BookingStatusPending,
	}
	if in.Note != "" {
		booking.Notes = &in.Note
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperror.ErrSlotTaken
		}
		return nil, err
	}

	s.notify(userID, "booking_created", booking)

	return booking, nil
}

// ListBookings возвращает бронирования пользователя.
func (s *CoachService) ListBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CoachBooking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListBookingsForUser(ctx, userID, limit, offset)
}

// CancelBooking отменяет бронирование пользователя.
func (s *CoachService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*models.CoachBooking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, err
	}
	if booking.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeConflict, "бронирование уже завершено")
	}

	if err := s.repo.UpdateBookingStatus(ctx, bookingID, models.BookingStatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled

	s.notify(userID, "booking_updated", booking)

	return booking, nil
}

func (s *CoachService) notify(userID uuid.UUID, event string, data any) {
	if s.hub == nil {
		return
	}
	if err := s.hub.BroadcastToUser(userID, event, data); err != nil {
		logger.Log.WithField("user_id", userID).WithError(err).Warn("coach service: не удалось отправить уведомление")
	}
}
