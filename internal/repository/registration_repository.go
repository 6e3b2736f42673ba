package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/repository/common"
)

// Ошибки потока регистрации.
var (
	ErrPendingNotFound      = errors.New("pending registration not found")
	ErrVerificationNotFound = errors.New("verification record not found")
	ErrDuplicateUser        = errors.New("user already exists")
)

// RegistrationRepository отвечает за таблицы pending_registrations и
// email_verifications, а также за атомарное продвижение pending записи
// в постоянный аккаунт.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository создаёт экземпляр репозитория.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// UpsertPending создаёт pending регистрацию или перезаписывает существующую
// для того же email одним запросом. ON CONFLICT закрывает гонку
// check-then-act между конкурентными попытками регистрации.
func (r *RegistrationRepository) UpsertPending(ctx context.Context, pending *models.PendingRegistration) error {
	query := `
		INSERT INTO pending_registrations (username, email, password_hash, full_name, phone, date_of_birth, gender, verification_code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (email) DO UPDATE
		SET username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			full_name = EXCLUDED.full_name,
			phone = EXCLUDED.phone,
			date_of_birth = EXCLUDED.date_of_birth,
			gender = EXCLUDED.gender,
			verification_code = EXCLUDED.verification_code,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		pending.Username,
		pending.Email,
		pending.PasswordHash,
		pending.FullName,
		pending.Phone,
		pending.DateOfBirth,
		pending.Gender,
		pending.VerificationCode,
		pending.ExpiresAt,
	).Scan(&pending.ID, &pending.CreatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("registration repository: upsert pending %w", err)
	}

	return nil
}

// UsernameHeldByPending проверяет, не занят ли username чужой pending
// регистрацией. Заявка на тот же email не считается: она будет перезаписана.
func (r *RegistrationRepository) UsernameHeldByPending(ctx context.Context, username, email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM pending_registrations WHERE username = $1 AND email <> $2`
	if err := r.db.GetContext(ctx, &count, query, username, email); err != nil {
		return false, fmt.Errorf("registration repository: username held by pending %w", err)
	}
	return count > 0, nil
}

// GetPendingByEmail возвращает pending регистрацию по email.
func (r *RegistrationRepository) GetPendingByEmail(ctx context.Context, email string) (*models.PendingRegistration, error) {
	return common.GetByField[models.PendingRegistration](ctx, r.db, "pending_registrations", "email", email, ErrPendingNotFound)
}

// UpdatePendingCode выдаёт новый код для существующей pending регистрации.
func (r *RegistrationRepository) UpdatePendingCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pending_registrations
		SET verification_code = $1, expires_at = $2
		WHERE email = $3
	`, code, expiresAt, email)
	if err != nil {
		return fmt.Errorf("registration repository: update pending code %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("registration repository: update pending code rows affected %w", err)
	}
	if affected == 0 {
		return ErrPendingNotFound
	}

	return nil
}

// CreateVerification добавляет журнальную запись выданного кода.
func (r *RegistrationRepository) CreateVerification(ctx context.Context, v *models.EmailVerification) error {
	query := `
		INSERT INTO email_verifications (email, verification_code, expires_at, is_used)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		v.Email, v.VerificationCode, v.ExpiresAt,
	).Scan(&v.ID, &v.CreatedAt); err != nil {
		return fmt.Errorf("registration repository: create verification %w", err)
	}

	return nil
}

// GetLatestVerification возвращает самую свежую запись кода для email.
// Более старые записи при проверке не учитываются.
func (r *RegistrationRepository) GetLatestVerification(ctx context.Context, email string) (*models.EmailVerification, error) {
	var v models.EmailVerification
	query := `
		SELECT id, email, verification_code, expires_at, is_used, created_at
		FROM email_verifications
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &v, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("registration repository: get latest verification %w", err)
	}

	return &v, nil
}

// DeleteVerifications удаляет все записи кодов для email.
func (r *RegistrationRepository) DeleteVerifications(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM email_verifications WHERE email = $1`, email); err != nil {
		return fmt.Errorf("registration repository: delete verifications %w", err)
	}

	return nil
}

// Promote атомарно превращает pending регистрацию в постоянный аккаунт:
// вставка в users, вставка обнулённой записи smoking_status и удаление
// pending строки выполняются в одной транзакции. При любой ошибке вся
// транзакция откатывается - частичного аккаунта существовать не может.
// Уникальные ограничения на email и username служат страховкой: из двух
// конкурентных подтверждений одно завершится ErrDuplicateUser.
func (r *RegistrationRepository) Promote(ctx context.Context, pending *models.PendingRegistration) (*models.User, error) {
	user := &models.User{
		Username:      pending.Username,
		Email:         pending.Email,
		PasswordHash:  pending.PasswordHash,
		FullName:      pending.FullName,
		Phone:         pending.Phone,
		DateOfBirth:   pending.DateOfBirth,
		Gender:        pending.Gender,
		Membership:    models.MembershipFree,
		EmailVerified: true,
		IsActive:      true,
	}

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		insertUser := `
			INSERT INTO users (username, email, password_hash, full_name, phone, date_of_birth, gender, membership, email_verified, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, TRUE)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, insertUser,
			user.Username, user.Email, user.PasswordHash, user.FullName,
			user.Phone, user.DateOfBirth, user.Gender, user.Membership,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		insertStatus := `
			INSERT INTO smoking_status (user_id, current_streak_days, longest_streak_days, smoke_free_days, cigarettes_avoided, money_saved, state, health_score)
			VALUES ($1, 0, 0, 0, 0, 0, $2, 0)
		`
		if _, err := tx.ExecContext(ctx, insertStatus, user.ID, models.SmokingStateActive); err != nil {
			return fmt.Errorf("insert smoking status: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM pending_registrations WHERE email = $1`, pending.Email)
		if err != nil {
			return fmt.Errorf("delete pending: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete pending rows affected: %w", err)
		}
		if affected == 0 {
			// Конкурентное подтверждение уже забрало pending запись.
			return ErrPendingNotFound
		}

		return nil
	})
	if err != nil {
		if common.IsUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		if errors.Is(err, ErrPendingNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("registration repository: promote %w", err)
	}

	return user, nil
}
