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

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = errors.New("user not found")

// UserRepository отвечает за работу с таблицами users, smoking_status и user_sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, full_name, phone, date_of_birth, gender, avatar_photo_id, membership, email_verified, is_active, last_login_at, created_at, updated_at`

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}

	return &user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}

	return &user, nil
}

// ExistsByEmailOrUsername проверяет занятость email или username среди
// постоянных аккаунтов. Вызывается до создания pending регистрации, чтобы
// не продвинуть pending запись в конфликтующий аккаунт.
func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE email = $1 OR username = $2`
	if err := r.db.GetContext(ctx, &count, query, email, username); err != nil {
		return false, fmt.Errorf("user repository: exists by email or username %w", err)
	}
	return count > 0, nil
}

// UpdateProfile обновляет редактируемые поля профиля.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET full_name = $1, phone = $2, date_of_birth = $3, gender = $4, avatar_photo_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		user.FullName, user.Phone, user.DateOfBirth, user.Gender, user.AvatarPhotoID, user.ID,
	).Scan(&user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user repository: update profile %w", err)
	}

	return nil
}

// UpdatePasswordHash сохраняет новый хеш пароля.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, userID); err != nil {
		return fmt.Errorf("user repository: update password hash %w", err)
	}

	return nil
}

// UpdateMembership переключает тариф пользователя.
func (r *UserRepository) UpdateMembership(ctx context.Context, userID uuid.UUID, membership string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET membership = $1, updated_at = NOW() WHERE id = $2`, membership, userID)
	if err != nil {
		return fmt.Errorf("user repository: update membership %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: update membership rows affected %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Deactivate мягко отключает аккаунт. Записи пользователей никогда не
// удаляются физически.
func (r *UserRepository) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: deactivate %w", err)
	}

	return nil
}

// UpdateLastLoginAt обновляет время последнего входа пользователя.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: update last login at %w", err)
	}

	return nil
}

// GetSmokingStatus возвращает запись статуса пользователя.
func (r *UserRepository) GetSmokingStatus(ctx context.Context, userID uuid.UUID) (*models.SmokingStatus, error) {
	var status models.SmokingStatus
	query := `
		SELECT user_id, current_streak_days, longest_streak_days, smoke_free_days, cigarettes_avoided, money_saved, state, health_score, updated_at
		FROM smoking_status
		WHERE user_id = $1
	`
	if err := r.db.GetContext(ctx, &status, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get smoking status %w", err)
	}

	return &status, nil
}

// UpdateSmokingStatus сохраняет новые значения счётчиков.
func (r *UserRepository) UpdateSmokingStatus(ctx context.Context, status *models.SmokingStatus) error {
	query := `
		UPDATE smoking_status
		SET current_streak_days = $1,
			longest_streak_days = $2,
			smoke_free_days = $3,
			cigarettes_avoided = $4,
			money_saved = $5,
			state = $6,
			health_score = $7,
			updated_at = NOW()
		WHERE user_id = $8
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		status.CurrentStreakDays,
		status.LongestStreakDays,
		status.SmokeFreeDays,
		status.CigarettesAvoided,
		status.MoneySaved,
		status.State,
		status.HealthScore,
		status.UserID,
	).Scan(&status.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user repository: update smoking status %w", err)
	}

	return nil
}

// CreateSession сохраняет новую сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}

	return nil
}

// GetSessionByToken возвращает сессию по refresh токену.
func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE refresh_token = $1 AND expires_at > NOW()
	`
	if err := r.db.GetContext(ctx, &session, query, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get session by token %w", err)
	}

	return &session, nil
}

// ListSessions возвращает список всех активных сессий пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("user repository: list sessions %w", err)
	}

	return sessions, nil
}

// DeleteSessionByID удаляет сессию по идентификатору.
func (r *UserRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("user repository: delete session by id %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: delete session by id rows affected %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user repository: session not found")
	}

	return nil
}

// DeleteExpiredSessions чистит протухшие сессии пользователя.
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, userID uuid.UUID, now time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1 AND expires_at <= $2`, userID, now); err != nil {
		return fmt.Errorf("user repository: delete expired sessions %w", err)
	}

	return nil
}
