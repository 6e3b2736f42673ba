package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership уровни подписки.
const (
	MembershipFree    = "free"
	MembershipPremium = "premium"
	MembershipPro     = "pro"
)

// Состояния процесса отказа от курения.
const (
	SmokingStateActive    = "active"
	SmokingStateRelapsed  = "relapsed"
	SmokingStateCompleted = "completed"
)

// User описывает постоянный аккаунт пользователя.
// Создаётся только через подтверждение email, никогда напрямую при регистрации.
type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Username      string     `db:"username" json:"username"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	FullName      string     `db:"full_name" json:"full_name"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender        *string    `db:"gender" json:"gender,omitempty"`
	AvatarPhotoID *uuid.UUID `db:"avatar_photo_id" json:"avatar_photo_id,omitempty"`
	Membership    string     `db:"membership" json:"membership"`
	EmailVerified bool       `db:"email_verified" json:"email_verified"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	LastLoginAt   *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// SmokingStatus хранит счётчики прогресса пользователя, ровно одна запись на аккаунт.
type SmokingStatus struct {
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	CurrentStreakDays int       `db:"current_streak_days" json:"current_streak_days"`
	LongestStreakDays int       `db:"longest_streak_days" json:"longest_streak_days"`
	SmokeFreeDays     int       `db:"smoke_free_days" json:"smoke_free_days"`
	CigarettesAvoided int       `db:"cigarettes_avoided" json:"cigarettes_avoided"`
	MoneySaved        float64   `db:"money_saved" json:"money_saved"`
	State             string    `db:"state" json:"state"`
	HealthScore       int       `db:"health_score" json:"health_score"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
