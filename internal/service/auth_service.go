package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/ignatzorin/smokefree-backend/internal/goroutine"
	"github.com/ignatzorin/smokefree-backend/internal/logger"
	"github.com/ignatzorin/smokefree-backend/internal/mail"
	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
	"github.com/ignatzorin/smokefree-backend/internal/validation"
)

// RegistrationStore описывает зависимости AuthService от хранилища заявок.
type RegistrationStore interface {
	UpsertPending(ctx context.Context, pending *models.PendingRegistration) error
	GetPendingByEmail(ctx context.Context, email string) (*models.PendingRegistration, error)
	UsernameHeldByPending(ctx context.Context, username, email string) (bool, error)
	UpdatePendingCode(ctx context.Context, email, code string, expiresAt time.Time) error
	CreateVerification(ctx context.Context, v *models.EmailVerification) error
	GetLatestVerification(ctx context.Context, email string) (*models.EmailVerification, error)
	DeleteVerifications(ctx context.Context, email string) error
	Promote(ctx context.Context, pending *models.PendingRegistration) (*models.User, error)
}

// AuthUserStore описывает зависимости AuthService от хранилища пользователей.
type AuthUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
	GetSmokingStatus(ctx context.Context, userID uuid.UUID) (*models.SmokingStatus, error)
	CreateSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, refreshToken string) error
	GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error)
}

// AuthService инкапсулирует регистрацию с подтверждением email и аутентификацию.
type AuthService struct {
	registrations RegistrationStore
	users         AuthUserStore
	tokenManager  *TokenManager
	sender        mail.Sender
	recovery      *goroutine.RecoveryHandler
	codeTTL       time.Duration
	bcryptCost    int
}

// RegisterInput содержит данные пользователя при регистрации.
// Телефон, дата рождения и пол необязательны и попадают в аккаунт
// при подтверждении вместе с остальными полями заявки.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	Phone       *string
	DateOfBirth *string
	Gender      *string
}

// RegisterResult возвращает итог первого шага регистрации.
// Аккаунт на этом шаге ещё не существует, только заявка и код.
type RegisterResult struct {
	Email string
	// Code возвращается наружу только в development окружении
	Code string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог подтверждения, входа или обновления токенов.
type AuthResult struct {
	User          *models.User
	SmokingStatus *models.SmokingStatus
	TokenPair     *TokenPair
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(
	registrations RegistrationStore,
	users AuthUserStore,
	tokenManager *TokenManager,
	sender mail.Sender,
	recovery *goroutine.RecoveryHandler,
	codeTTL time.Duration,
	bcryptCost int,
) *AuthService {
	if bcryptCost < 12 {
		bcryptCost = 12
	}
	return &AuthService{
		registrations: registrations,
		users:         users,
		tokenManager:  tokenManager,
		sender:        sender,
		recovery:      recovery,
		codeTTL:       codeTTL,
		bcryptCost:    bcryptCost,
	}
}

// Register принимает заявку на регистрацию: валидирует данные, сохраняет
// неподтверждённую заявку с кодом и отправляет код на email. Повторная
// заявка на тот же email перезаписывает предыдущую. Аккаунт не создаётся
// до подтверждения кода.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateFullName(in.FullName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
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

	var dateOfBirth *time.Time
	if in.DateOfBirth != nil && *in.DateOfBirth != "" {
		if err := validation.ValidateDateOfBirth(*in.DateOfBirth); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		dob, err := time.Parse("2006-01-02", *in.DateOfBirth)
		if err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "дата рождения должна быть в формате YYYY-MM-DD")
		}
		dateOfBirth = &dob
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("auth service: проверка занятости email: %w", err)
	}
	if exists {
		return nil, apperror.ErrUserAlreadyExists
	}

	// Username может быть занят и чужой неподтверждённой заявкой
	taken, err := s.registrations.UsernameHeldByPending(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("auth service: проверка занятости username среди заявок: %w", err)
	}
	if taken {
		return nil, apperror.ErrUserAlreadyExists
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("auth service: генерация кода: %w", err)
	}
	expiresAt := time.Now().Add(s.codeTTL)

	pending := &models.PendingRegistration{
		Username:         username,
		Email:            email,
		PasswordHash:     string(passHash),
		FullName:         strings.TrimSpace(in.FullName),
		Phone:            in.Phone,
		DateOfBirth:      dateOfBirth,
		Gender:           in.Gender,
		VerificationCode: code,
		ExpiresAt:        expiresAt,
	}

	if err := s.registrations.UpsertPending(ctx, pending); err != nil {
		// Гонка check-then-act: конкурентная заявка забрала username первой
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperror.ErrUserAlreadyExists
		}
		return nil, err
	}

	verification := &models.EmailVerification{
		Email:            email,
		VerificationCode: code,
		ExpiresAt:        expiresAt,
	}
	if err := s.registrations.CreateVerification(ctx, verification); err != nil {
		return nil, err
	}

	s.dispatchVerificationEmail(email, code)

	return &RegisterResult{Email: email, Code: code}, nil
}

// VerifyEmail проверяет код и атомарно превращает заявку в аккаунт.
// Неудачная проверка ничего не меняет: заявка и код остаются на месте,
// попытку можно повторить.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string, meta map[string]string) (*AuthResult, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateVerificationCode(code); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	email = strings.ToLower(strings.TrimSpace(email))

	latest, err := s.registrations.GetLatestVerification(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, apperror.ErrRegistrationNotFound
		}
		return nil, err
	}

	// Действителен только самый свежий код
	if latest.VerificationCode != code {
		logger.Log.WithField("email", email).Warn("auth service: код не совпадает с последним выданным")
		return nil, apperror.ErrInvalidVerifyCode
	}
	if time.Now().After(latest.ExpiresAt) {
		logger.Log.WithField("email", email).Warn("auth service: код просрочен")
		return nil, apperror.ErrInvalidVerifyCode
	}

	pending, err := s.registrations.GetPendingByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrPendingNotFound) {
			return nil, apperror.ErrRegistrationNotFound
		}
		return nil, err
	}

	user, err := s.registrations.Promote(ctx, pending)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUser):
			return nil, apperror.ErrUserAlreadyExists
		case errors.Is(err, repository.ErrPendingNotFound):
			// Параллельный запрос успел подтвердить заявку первым
			return nil, apperror.ErrRegistrationNotFound
		}
		return nil, err
	}

	// Журнал кодов больше не нужен, чистим в лучшем случае
	if err := s.registrations.DeleteVerifications(ctx, email); err != nil {
		logger.Log.WithField("email", email).WithError(err).Warn("auth service: не удалось удалить журнал кодов")
	}

	s.dispatchWelcomeEmail(user.Email, user.FullName)

	tokenPair, _, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	status, err := s.users.GetSmokingStatus(ctx, user.ID)
	if err != nil {
		logger.Log.WithField("user_id", user.ID).WithError(err).Warn("auth service: статус курения недоступен")
		status = nil
	}

	return &AuthResult{User: user, SmokingStatus: status, TokenPair: tokenPair}, nil
}

// ResendCode выдаёт новый код для существующей заявки. Старый код
// перестаёт действовать, так как при проверке берётся последняя запись.
func (s *AuthService) ResendCode(ctx context.Context, email string) (*RegisterResult, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.registrations.GetPendingByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrPendingNotFound) {
			return nil, apperror.ErrRegistrationNotFound
		}
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("auth service: генерация кода: %w", err)
	}
	expiresAt := time.Now().Add(s.codeTTL)

	if err := s.registrations.UpdatePendingCode(ctx, email, code, expiresAt); err != nil {
		return nil, err
	}

	verification := &models.EmailVerification{
		Email:            email,
		VerificationCode: code,
		ExpiresAt:        expiresAt,
	}
	if err := s.registrations.CreateVerification(ctx, verification); err != nil {
		return nil, err
	}

	s.dispatchVerificationEmail(email, code)

	return &RegisterResult{Email: email, Code: code}, nil
}

// Login проверяет учётные данные и возвращает токены со статистикой курения.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta map[string]string) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "аккаунт заблокирован")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLoginAt(ctx, user.ID); err != nil {
		// Логируем, но вход не прерываем
		logger.Log.WithFields(map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось обновить last_login_at")
	}

	tokenPair, _, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	status, err := s.users.GetSmokingStatus(ctx, user.ID)
	if err != nil {
		logger.Log.WithField("user_id", user.ID).WithError(err).Warn("auth service: статус курения недоступен")
		status = nil
	}

	return &AuthResult{User: user, SmokingStatus: status, TokenPair: tokenPair}, nil
}

// Refresh проверяет refresh токен, ротирует сессию и выпускает новую пару.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta map[string]string) (*AuthResult, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	if _, err := s.users.GetSessionByToken(ctx, oldToken); err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "сессия не найдена или отозвана")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "некорректный subject")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "аккаунт заблокирован")
	}

	if err := s.users.DeleteSession(ctx, oldToken); err != nil {
		return nil, err
	}

	tokenPair, _, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Logout отзывает сессию по refresh токену.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.users.DeleteSession(ctx, refreshToken)
}

// issueSession выпускает пару токенов и сохраняет сессию.
func (s *AuthService) issueSession(ctx context.Context, user *models.User, meta map[string]string) (*TokenPair, *models.Session, error) {
	tokenPair, _, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, nil, err
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    refreshExp,
	}

	if meta != nil {
		if ua, ok := meta["user_agent"]; ok {
			session.UserAgent = &ua
		}
		if ip, ok := meta["ip"]; ok {
			session.IPAddress = &ip
		}
	}

	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	return tokenPair, session, nil
}

// dispatchVerificationEmail отправляет код в фоне, не блокируя запрос.
// Ошибка доставки логируется, пользователь может запросить код повторно.
func (s *AuthService) dispatchVerificationEmail(email, code string) {
	subject, body := mail.VerificationEmail(code, int(s.codeTTL.Minutes()))
	s.recovery.SafeGo(func() {
		if err := s.sender.Send(email, subject, body); err != nil {
			logger.Log.WithField("email", email).WithError(err).Error("auth service: не удалось отправить код подтверждения")
		}
	})
}

// dispatchWelcomeEmail отправляет приветственное письмо в фоне.
func (s *AuthService) dispatchWelcomeEmail(email, fullName string) {
	subject, body := mail.WelcomeEmail(fullName)
	s.recovery.SafeGo(func() {
		if err := s.sender.Send(email, subject, body); err != nil {
			logger.Log.WithField("email", email).WithError(err).Error("auth service: не удалось отправить приветственное письмо")
		}
	})
}

// generateCode формирует шестизначный цифровой код.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
