package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/ignatzorin/smokefree-backend/internal/logger"
	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
	"github.com/ignatzorin/smokefree-backend/internal/validation"
)

// ProfileUserStore описывает зависимости ProfileService от хранилища.
type ProfileUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
	Deactivate(ctx context.Context, userID uuid.UUID) error
	GetSmokingStatus(ctx context.Context, userID uuid.UUID) (*models.SmokingStatus, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error
	DeleteExpiredSessions(ctx context.Context, userID uuid.UUID, now time.Time) error
}

// ProfileService управляет профилем текущего пользователя.
type ProfileService struct {
	users      ProfileUserStore
	bcryptCost int
}

// UpdateProfileInput содержит изменяемые поля профиля.
type UpdateProfileInput struct {
	FullName    string
	Phone       *string
	DateOfBirth *string
	Gender      *string
}

// NewProfileService создаёт сервис профиля.
func NewProfileService(users ProfileUserStore, bcryptCost int) *ProfileService {
	if bcryptCost < 12 {
		bcryptCost = 12
	}
	return &ProfileService{users: users, bcryptCost: bcryptCost}
}

// GetProfile возвращает пользователя со статистикой курения.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, *models.SmokingStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, apperror.ErrUserNotFound
		}
		return nil, nil, err
	}

	status, err := s.users.GetSmokingStatus(ctx, userID)
	if err != nil {
		status = nil
	}

	return user, status, nil
}

// UpdateProfile обновляет изменяемые поля профиля.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	if in.FullName != "" {
		if err := validation.ValidateFullName(in.FullName); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if in.Phone != nil {
		if err := validation.ValidatePhone(*in.Phone); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if in.Gender != nil {
		if err := validation.ValidateGender(*in.Gender); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	if in.FullName != "" {
		user.FullName = in.FullName
	}
	if in.Phone != nil {
		user.Phone = in.Phone
	}
	if in.Gender != nil {
		user.Gender = in.Gender
	}
	if in.DateOfBirth != nil {
		if err := validation.ValidateDateOfBirth(*in.DateOfBirth); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		if *in.DateOfBirth != "" {
			dob, err := time.Parse("2006-01-02", *in.DateOfBirth)
			if err != nil {
				return nil, apperror.New(apperror.ErrCodeValidation, "дата рождения должна быть в формате YYYY-MM-DD")
			}
			user.DateOfBirth = &dob
		}
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *ProfileService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperror.New(apperror.ErrCodeUnauthorized, "текущий пароль неверен")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("profile service: не удалось захешировать пароль: %w", err)
	}

	return s.users.UpdatePasswordHash(ctx, userID, string(hash))
}

// DeactivateAccount мягко удаляет аккаунт.
func (s *ProfileService) DeactivateAccount(ctx context.Context, userID uuid.UUID) error {
	return s.users.Deactivate(ctx, userID)
}

// ListSessions возвращает активные сессии пользователя, попутно
// удаляя протухшие.
func (s *ProfileService) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	if err := s.users.DeleteExpiredSessions(ctx, userID, time.Now()); err != nil {
		logger.Log.WithField("user_id", userID).WithError(err).Warn("profile service: не удалось почистить сессии")
	}
	return s.users.ListSessions(ctx, userID)
}

// DeleteSession удаляет сессию по идентификатору.
func (s *ProfileService) DeleteSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	return s.users.DeleteSessionByID(ctx, sessionID, userID)
}
