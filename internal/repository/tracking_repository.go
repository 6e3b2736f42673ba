package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/smokefree-backend/internal/models"
)

// ErrEntryNotFound возвращается, когда запись трекинга не найдена.
var ErrEntryNotFound = errors.New("tracking entry not found")

// TrackingRepository отвечает за таблицы mood_entries и progress_entries.
type TrackingRepository struct {
	db *sqlx.DB
}

// NewTrackingRepository создаёт экземпляр репозитория.
func NewTrackingRepository(db *sqlx.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

// CreateMoodEntry сохраняет запись настроения.
func (r *TrackingRepository) CreateMoodEntry(ctx context.Context, entry *models.MoodEntry) error {
	query := `
		INSERT INTO mood_entries (user_id, mood, craving_level, note, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		entry.UserID, entry.Mood, entry.CravingLevel, entry.Note, entry.RecordedAt,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("tracking repository: create mood entry %w", err)
	}

	return nil
}

// ListMoodEntries возвращает записи настроения с пагинацией.
func (r *TrackingRepository) ListMoodEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.MoodEntry, error) {
	var entries []models.MoodEntry
	query := `
		SELECT * FROM mood_entries
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("tracking repository: list mood entries %w", err)
	}

	return entries, nil
}

// UpsertProgressEntry создаёт или обновляет дневную запись прогресса.
// Уникальность по (user_id, entry_date) закрывает повторную отправку за тот же день.
func (r *TrackingRepository) UpsertProgressEntry(ctx context.Context, entry *models.ProgressEntry) error {
	query := `
		INSERT INTO progress_entries (user_id, entry_date, cigarettes_smoked, money_spent)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, entry_date) DO UPDATE
		SET cigarettes_smoked = EXCLUDED.cigarettes_smoked,
			money_spent = EXCLUDED.money_spent
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		entry.UserID, entry.EntryDate, entry.CigarettesSmoked, entry.MoneySpent,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("tracking repository: upsert progress entry %w", err)
	}

	return nil
}

// GetProgressEntry возвращает запись за конкретную дату.
func (r *TrackingRepository) GetProgressEntry(ctx context.Context, userID uuid.UUID, date time.Time) (*models.ProgressEntry, error) {
	var entry models.ProgressEntry
	query := `SELECT * FROM progress_entries WHERE user_id = $1 AND entry_date = $2`
	if err := r.db.GetContext(ctx, &entry, query, userID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("tracking repository: get progress entry %w", err)
	}

	return &entry, nil
}

// ListProgressEntries возвращает дневные записи за период.
func (r *TrackingRepository) ListProgressEntries(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	query := `
		SELECT * FROM progress_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		ORDER BY entry_date ASC
	`
	if err := r.db.SelectContext(ctx, &entries, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("tracking repository: list progress entries %w", err)
	}

	return entries, nil
}

// GetSummary агрегирует статистику пользователя одним проходом по таблицам.
func (r *TrackingRepository) GetSummary(ctx context.Context, userID uuid.UUID) (*models.TrackingSummary, error) {
	summary := &models.TrackingSummary{}

	progressQuery := `
		SELECT
			COUNT(*) FILTER (WHERE cigarettes_smoked = 0) AS smoke_free_days,
			COUNT(*) FILTER (WHERE cigarettes_smoked > 0) AS relapse_days,
			COALESCE(SUM(cigarettes_smoked), 0) AS total_cigarettes,
			COALESCE(SUM(money_spent), 0) AS total_money_spent
		FROM progress_entries
		WHERE user_id = $1
	`
	if err := r.db.QueryRowContext(ctx, progressQuery, userID).Scan(
		&summary.SmokeFreeDays,
		&summary.RelapseDays,
		&summary.TotalCigarettes,
		&summary.TotalMoneySpent,
	); err != nil {
		return nil, fmt.Errorf("tracking repository: get progress summary %w", err)
	}

	moodQuery := `
		SELECT
			COALESCE(AVG(mood), 0) AS average_mood,
			COALESCE(AVG(craving_level), 0) AS average_craving,
			COUNT(*) AS mood_entries_count
		FROM mood_entries
		WHERE user_id = $1
	`
	if err := r.db.QueryRowContext(ctx, moodQuery, userID).Scan(
		&summary.AverageMood,
		&summary.AverageCraving,
		&summary.MoodEntriesCount,
	); err != nil {
		return nil, fmt.Errorf("tracking repository: get mood summary %w", err)
	}

	return summary, nil
}
