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
	"github.com/ignatzorin/smokefree-backend/internal/validation"
)

// TrackingStore описывает зависимости TrackingService от хранилища записей.
type TrackingStore interface {
	CreateMoodEntry(ctx context.Context, entry *models.MoodEntry) error
	ListMoodEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.MoodEntry, error)
	UpsertProgressEntry(ctx context.Context, entry *models.ProgressEntry) error
	GetProgressEntry(ctx context.Context, userID uuid.UUID, date time.Time) (*models.ProgressEntry, error)
	ListProgressEntries(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ProgressEntry, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*models.TrackingSummary, error)
}

// TrackingUserStore описывает нужную TrackingService часть хранилища пользователей.
type TrackingUserStore interface {
	GetSmokingStatus(ctx context.Context, userID uuid.UUID) (*models.SmokingStatus, error)
	UpdateSmokingStatus(ctx context.Context, status *models.SmokingStatus) error
}

// TrackingPlanStore описывает нужную TrackingService часть хранилища планов.
type TrackingPlanStore interface {
	GetCurrentForUser(ctx context.Context, userID uuid.UUID) (*models.QuitPlan, error)
}

// TrackingService ведёт дневник настроения и прогресса и пересчитывает
// статистику курения после каждой записи.
type TrackingService struct {
	repo  TrackingStore
	users TrackingUserStore
	plans TrackingPlanStore
}

// MoodInput содержит данные записи настроения.
type MoodInput struct {
	Mood         int
	CravingLevel int
	Note         string
}

// ProgressInput содержит данные дневной записи прогресса.
type ProgressInput struct {
	EntryDate        string
	CigarettesSmoked int
	MoneySpent       float64
}

// NewTrackingService создаёт сервис трекинга.
func NewTrackingService(repo TrackingStore, users TrackingUserStore, plans TrackingPlanStore) *TrackingService {
	return &TrackingService{repo: repo, users: users, plans: plans}
}

// RecordMood сохраняет запись настроения.
func (s *TrackingService) RecordMood(ctx context.Context, userID uuid.UUID, in MoodInput) (*models.MoodEntry, error) {
	if err := validation.ValidateMood(in.Mood); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateCravingLevel(in.CravingLevel); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("заметка", in.Note, 0, validation.MaxNoteLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	entry := &models.MoodEntry{
		UserID:       userID,
		Mood:         in.Mood,
		CravingLevel: in.CravingLevel,
		RecordedAt:   time.Now(),
	}
	if in.Note != "" {
		entry.Note = &in.Note
	}

	if err := s.repo.CreateMoodEntry(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListMood возвращает записи настроения.
func (s *TrackingService) ListMood(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.MoodEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMoodEntries(ctx, userID, limit, offset)
}

// RecordProgress сохраняет дневную запись прогресса (не более одной на дату,
// повторная отправка перезаписывает) и пересчитывает статистику курения.
func (s *TrackingService) RecordProgress(ctx context.Context, userID uuid.UUID, in ProgressInput) (*models.ProgressEntry, *models.SmokingStatus, error) {
	entryDate, err := time.Parse("2006-01-02", in.EntryDate)
	if err != nil {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "дата должна быть в формате YYYY-MM-DD")
	}
	if entryDate.After(time.Now()) {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "нельзя записать прогресс на будущую дату")
	}
	if in.CigarettesSmoked < 0 || in.MoneySpent < 0 {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "значения не могут быть отрицательными")
	}

	entry := &models.ProgressEntry{
		UserID:           userID,
		EntryDate:        entryDate,
		CigarettesSmoked: in.CigarettesSmoked,
		MoneySpent:       in.MoneySpent,
	}

	if err := s.repo.UpsertProgressEntry(ctx, entry); err != nil {
		return nil, nil, err
	}

	status, err := s.recalcStatus(ctx, userID, entry)
	if err != nil {
		// Запись сохранена, пересчёт статистики не критичен
		logger.Log.WithField("user_id", userID).WithError(err).Warn("tracking service: не удалось пересчитать статистику")
		status = nil
	}

	return entry, status, nil
}

// GetProgressForDate возвращает дневную запись за конкретную дату.
func (s *TrackingService) GetProgressForDate(ctx context.Context, userID uuid.UUID, date string) (*models.ProgressEntry, error) {
	entryDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "дата должна быть в формате YYYY-MM-DD")
	}

	entry, err := s.repo.GetProgressEntry(ctx, userID, entryDate)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "запись за эту дату не найдена")
		}
		return nil, err
	}

	return entry, nil
}

// ListProgress возвращает записи прогресса за период.
func (s *TrackingService) ListProgress(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ProgressEntry, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	return s.repo.ListProgressEntries(ctx, userID, from, to)
}

// GetSummary возвращает агрегированную статистику для дашборда.
func (s *TrackingService) GetSummary(ctx context.Context, userID uuid.UUID) (*models.TrackingSummary, error) {
	return s.repo.GetSummary(ctx, userID)
}

// recalcStatus обновляет счётчики серий и накопленную экономию.
// День без сигарет продлевает серию, срыв обнуляет её и переводит
// статус в relapsed.
func (s *TrackingService) recalcStatus(ctx context.Context, userID uuid.UUID, entry *models.ProgressEntry) (*models.SmokingStatus, error) {
	status, err := s.users.GetSmokingStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	if entry.CigarettesSmoked == 0 {
		status.CurrentStreakDays++
		status.SmokeFreeDays++
		status.State = models.SmokingStateActive

		if plan, err := s.plans.GetCurrentForUser(ctx, userID); err == nil {
			status.CigarettesAvoided += plan.CigarettesPerDay
			if plan.CigarettesPerPack > 0 {
				status.MoneySaved += plan.PricePerPack / float64(plan.CigarettesPerPack) * float64(plan.CigarettesPerDay)
			}
		} else if !errors.Is(err, repository.ErrPlanNotFound) {
			return nil, err
		}
	} else {
		status.CurrentStreakDays = 0
		status.State = models.SmokingStateRelapsed
	}

	if status.CurrentStreakDays > status.LongestStreakDays {
		status.LongestStreakDays = status.CurrentStreakDays
	}

	status.HealthScore = status.SmokeFreeDays
	if status.HealthScore > 100 {
		status.HealthScore = 100
	}

	if err := s.users.UpdateSmokingStatus(ctx, status); err != nil {
		return nil, err
	}

	return status, nil
}
