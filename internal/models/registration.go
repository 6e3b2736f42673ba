package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingRegistration хранит неподтверждённые данные аккаунта.
// На один email существует не более одной живой записи: повторная попытка
// регистрации перезаписывает строку (новый код, новый срок действия).
type PendingRegistration struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Username         string     `db:"username" json:"username"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	FullName         string     `db:"full_name" json:"full_name"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           *string    `db:"gender" json:"gender,omitempty"`
	VerificationCode string     `db:"verification_code" json:"-"`
	ExpiresAt        time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// EmailVerification - журнальная запись выданного кода.
// Записей на email может быть несколько, при проверке учитывается только
// самая свежая.
type EmailVerification struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	VerificationCode string    `db:"verification_code" json:"-"`
	ExpiresAt        time.Time `db:"expires_at" json:"expires_at"`
	IsUsed           bool      `db:"is_used" json:"is_used"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
