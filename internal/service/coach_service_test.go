package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
)

// mockCoachStore реализует CoachStore для тестов, занятые слоты отклоняет
// так же, как это делает уникальный индекс в БД.
type mockCoachStore struct {
	coaches  map[uuid.UUID]*models.Coach
	bookings map[uuid.UUID]*models.CoachBooking
}

func newMockCoachStore() *mockCoachStore {
	return &mockCoachStore{
		coaches:  make(map[uuid.UUID]*models.Coach),
		bookings: make(map[uuid.UUID]*models.CoachBooking),
	}
}

func (m *mockCoachStore) addCoach(active bool) *models.Coach {
	coach := &models.Coach{ID: uuid.New(), FullName: "Анна Соколова", IsActive: active}
	m.coaches[coach.ID] = coach
	return coach
}

func (m *mockCoachStore) ListCoaches(ctx context.Context, limit, offset int) ([]models.Coach, error) {
	var coaches []models.Coach
	for _, coach := range m.coaches {
		if coach.IsActive {
			coaches = append(coaches, *coach)
		}
	}
	return coaches, nil
}

func (m *mockCoachStore) GetCoachByID(ctx context.Context, id uuid.UUID) (*models.Coach, error) {
	if coach, ok := m.coaches[id]; ok {
		return coach, nil
	}
	return nil, repository.ErrCoachNotFound
}

func (m *mockCoachStore) CreateBooking(ctx context.Context, booking *models.CoachBooking) error {
	for _, existing := range m.bookings {
		if existing.CoachID == booking.CoachID && existing.ScheduledAt.Equal(booking.ScheduledAt) {
			return repository.ErrSlotTaken
		}
	}
	booking.ID = uuid.New()
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockCoachStore) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.CoachBooking, error) {
	if booking, ok := m.bookings[id]; ok {
		return booking, nil
	}
	return nil, repository.ErrBookingNotFound
}

func (m *mockCoachStore) ListBookingsForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CoachBooking, error) {
	var bookings []models.CoachBooking
	for _, booking := range m.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, *booking)
		}
	}
	return bookings, nil
}

func (m *mockCoachStore) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status string) error {
	booking, ok := m.bookings[bookingID]
	if !ok {
		return repository.ErrBookingNotFound
	}
	booking.Status = status
	return nil
}

func futureSlot() string {
	return time.Now().Add(48 * time.Hour).Truncate(time.Hour).Format(time.RFC3339)
}

func TestCoachService_CreateBooking(t *testing.T) {
	store := newMockCoachStore()
	hub := &mockBroadcaster{}
	svc := NewCoachService(store, hub)
	ctx := context.Background()
	coach := store.addCoach(true)
	userID := uuid.New()

	booking, err := svc.CreateBooking(ctx, userID, BookingInput{
		CoachID:     coach.ID.String(),
		ScheduledAt: futureSlot(),
		Note:        "первая сессия",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.NotNil(t, booking.Notes)

	assert.Len(t, hub.events, 1)
	assert.Equal(t, "booking_created", hub.events[0].event)
}

func TestCoachService_CreateBooking_SlotTaken(t *testing.T) {
	store := newMockCoachStore()
	svc := NewCoachService(store, &mockBroadcaster{})
	ctx := context.Background()
	coach := store.addCoach(true)
	slot := futureSlot()

	_, err := svc.CreateBooking(ctx, uuid.New(), BookingInput{CoachID: coach.ID.String(), ScheduledAt: slot})
	assert.NoError(t, err)

	// Тот же слот у того же консультанта занят
	_, err = svc.CreateBooking(ctx, uuid.New(), BookingInput{CoachID: coach.ID.String(), ScheduledAt: slot})
	assert.ErrorIs(t, err, apperror.ErrSlotTaken)

	// У другого консультанта тот же слот свободен
	other := store.addCoach(true)
	_, err = svc.CreateBooking(ctx, uuid.New(), BookingInput{CoachID: other.ID.String(), ScheduledAt: slot})
	assert.NoError(t, err)
}

func TestCoachService_CreateBooking_Validation(t *testing.T) {
	store := newMockCoachStore()
	svc := NewCoachService(store, &mockBroadcaster{})
	ctx := context.Background()
	coach := store.addCoach(true)

	_, err := svc.CreateBooking(ctx, uuid.New(), BookingInput{CoachID: "не-uuid", ScheduledAt: futureSlot()})
	assert.Error(t, err)

	_, err = svc.CreateBooking(ctx, uuid.New(), BookingInput{CoachID: coach.ID.String(), ScheduledAt: "завтра"})
	assert.Error(t, err)

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	_, err = svc.CreateBooking(ctx, uuid.New(), BookingInput{CoachID: coach.ID.String(), ScheduledAt: past})
	assert.Error(t, err)

	// Неактивный консультант недоступен для записи
	inactive := store.addCoach(false)
	_, err = svc.CreateBooking(ctx, uuid.New(), BookingInput{CoachID: inactive.ID.String(), ScheduledAt: futureSlot()})
	assert.ErrorIs(t, err, apperror.ErrCoachNotFound)
}

func TestCoachService_CancelBooking(t *testing.T) {
	store := newMockCoachStore()
	hub := &mockBroadcaster{}
	svc := NewCoachService(store, hub)
	ctx := context.Background()
	coach := store.addCoach(true)
	userID := uuid.New()

	booking, err := svc.CreateBooking(ctx, userID, BookingInput{CoachID: coach.ID.String(), ScheduledAt: futureSlot()})
	assert.NoError(t, err)

	// Чужое бронирование отменить нельзя
	_, err = svc.CancelBooking(ctx, uuid.New(), booking.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	cancelled, err := svc.CancelBooking(ctx, userID, booking.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	// Повторная отмена отклоняется
	_, err = svc.CancelBooking(ctx, userID, booking.ID)
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}
