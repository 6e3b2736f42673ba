package models

import (
	"time"

	"github.com/google/uuid"
)

// MoodEntry - запись настроения и уровня тяги.
type MoodEntry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Mood         int       `db:"mood" json:"mood"`
	CravingLevel int       `db:"craving_level" json:"craving_level"`
	Note         *string   `db:"note" json:"note,omitempty"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProgressEntry - дневная запись прогресса, не более одной на дату.
type ProgressEntry struct {
	ID               uuid.UUID `db:"id" json:"id"`
	UserID           uuid.UUID `db:"user_id" json:"user_id"`
	EntryDate        time.Time `db:"entry_date" json:"entry_date"`
	CigarettesSmoked int       `db:"cigarettes_smoked" json:"cigarettes_smoked"`
	MoneySpent       float64   `db:"money_spent" json:"money_spent"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// TrackingSummary содержит агрегированную статистику для дашборда.
type TrackingSummary struct {
	SmokeFreeDays    int     `json:"smoke_free_days"`
	RelapseDays      int     `json:"relapse_days"`
	TotalCigarettes  int     `json:"total_cigarettes"`
	TotalMoneySpent  float64 `json:"total_money_spent"`
	AverageMood      float64 `json:"average_mood"`
	AverageCraving   float64 `json:"average_craving"`
	MoodEntriesCount int     `json:"mood_entries_count"`
}
