package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/smokefree-backend/internal/goroutine"
	"github.com/ignatzorin/smokefree-backend/internal/logger"
	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
)

// mockRegistrationStore реализует RegistrationStore для тестов.
type mockRegistrationStore struct {
	pending       map[string]*models.PendingRegistration
	verifications map[string][]models.EmailVerification
	users         *mockAuthUserStore
}

func newMockRegistrationStore(users *mockAuthUserStore) *mockRegistrationStore {
	return &mockRegistrationStore{
		pending:       make(map[string]*models.PendingRegistration),
		verifications: make(map[string][]models.EmailVerification),
		users:         users,
	}
}

func (m *mockRegistrationStore) UpsertPending(ctx context.Context, p *models.PendingRegistration) error {
	if existing, ok := m.pending[p.Email]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		p.ID = uuid.New()
		p.CreatedAt = time.Now()
	}
	m.pending[p.Email] = p
	return nil
}

func (m *mockRegistrationStore) GetPendingByEmail(ctx context.Context, email string) (*models.PendingRegistration, error) {
	if p, ok := m.pending[email]; ok {
		return p, nil
	}
	return nil, repository.ErrPendingNotFound
}

func (m *mockRegistrationStore) UsernameHeldByPending(ctx context.Context, username, email string) (bool, error) {
	for _, p := range m.pending {
		if p.Username == username && p.Email != email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRegistrationStore) UpdatePendingCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	p, ok := m.pending[email]
	if !ok {
		return repository.ErrPendingNotFound
	}
	p.VerificationCode = code
	p.ExpiresAt = expiresAt
	return nil
}

func (m *mockRegistrationStore) CreateVerification(ctx context.Context, v *models.EmailVerification) error {
	v.ID = uuid.New()
	v.CreatedAt = time.Now().Add(time.Duration(len(m.verifications[v.Email])) * time.Millisecond)
	m.verifications[v.Email] = append(m.verifications[v.Email], *v)
	return nil
}

func (m *mockRegistrationStore) GetLatestVerification(ctx context.Context, email string) (*models.EmailVerification, error) {
	records := m.verifications[email]
	if len(records) == 0 {
		return nil, repository.ErrVerificationNotFound
	}
	sorted := make([]models.EmailVerification, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	return &sorted[0], nil
}

func (m *mockRegistrationStore) DeleteVerifications(ctx context.Context, email string) error {
	delete(m.verifications, email)
	return nil
}

func (m *mockRegistrationStore) Promote(ctx context.Context, pending *models.PendingRegistration) (*models.User, error) {
	if _, ok := m.pending[pending.Email]; !ok {
		return nil, repository.ErrPendingNotFound
	}
	if _, ok := m.users.usersByEmail[pending.Email]; ok {
		return nil, repository.ErrDuplicateUser
	}

	now := time.Now()
	user := &models.User{
		ID:            uuid.New(),
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
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.users.usersByEmail[user.Email] = user
	m.users.usersByID[user.ID] = user
	m.users.statuses[user.ID] = &models.SmokingStatus{
		UserID:    user.ID,
		State:     models.SmokingStateActive,
		UpdatedAt: now,
	}
	delete(m.pending, pending.Email)
	return user, nil
}

// mockAuthUserStore реализует AuthUserStore для тестов.
type mockAuthUserStore struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	statuses     map[uuid.UUID]*models.SmokingStatus
	sessions     map[string]*models.Session
}

func newMockAuthUserStore() *mockAuthUserStore {
	return &mockAuthUserStore{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		statuses:     make(map[uuid.UUID]*models.SmokingStatus),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthUserStore) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	if _, ok := m.usersByEmail[email]; ok {
		return true, nil
	}
	for _, user := range m.usersByEmail {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAuthUserStore) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if user, ok := m.usersByID[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (m *mockAuthUserStore) GetSmokingStatus(ctx context.Context, userID uuid.UUID) (*models.SmokingStatus, error) {
	if status, ok := m.statuses[userID]; ok {
		return status, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthUserStore) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthUserStore) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockAuthUserStore) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	if session, ok := m.sessions[refreshToken]; ok {
		return session, nil
	}
	return nil, repository.ErrUserNotFound
}

// mockSender собирает отправленные письма, потокобезопасен для фоновой отправки.
type mockSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mockSender) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}

func newTestAuthService(codeTTL time.Duration) (*AuthService, *mockRegistrationStore, *mockAuthUserStore) {
	users := newMockAuthUserStore()
	registrations := newMockRegistrationStore(users)
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	recovery := goroutine.NewRecoveryHandler(logger.Log)
	svc := NewAuthService(registrations, users, tokenManager, &mockSender{}, recovery, codeTTL, bcrypt.MinCost)
	return svc, registrations, users
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username: "ivan_petrov",
		Email:    "ivan@example.com",
		Password: "Password123",
		FullName: "Иван Петров",
	}
}

func TestAuthService_Register_CreatesPendingNotUser(t *testing.T) {
	svc, registrations, users := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	res, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register вернул ошибку: %v", err)
	}

	if res.Email != "ivan@example.com" {
		t.Fatalf("email должен быть нормализован, получили %q", res.Email)
	}
	if len(res.Code) != 6 {
		t.Fatalf("ожидался шестизначный код, получили %q", res.Code)
	}
	if len(registrations.pending) != 1 {
		t.Fatalf("ожидалась одна заявка, получили %d", len(registrations.pending))
	}
	if len(registrations.verifications["ivan@example.com"]) != 1 {
		t.Fatalf("ожидалась одна запись кода")
	}
	if len(users.usersByEmail) != 0 {
		t.Fatalf("аккаунт не должен создаваться до подтверждения")
	}

	pending := registrations.pending["ivan@example.com"]
	if pending.PasswordHash == "Password123" {
		t.Fatalf("пароль должен храниться в виде хеша")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(pending.PasswordHash), []byte("Password123")); err != nil {
		t.Fatalf("хеш пароля не совпадает: %v", err)
	}
}

func TestAuthService_Register_DuplicateUser(t *testing.T) {
	svc, _, users := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	users.usersByEmail["ivan@example.com"] = &models.User{ID: uuid.New(), Email: "ivan@example.com", Username: "someone"}

	_, err := svc.Register(ctx, validRegisterInput())
	if !errors.Is(err, apperror.ErrUserAlreadyExists) {
		t.Fatalf("ожидалась ошибка занятого email, получили %v", err)
	}

	// Занятый username тоже блокирует регистрацию
	users.usersByEmail["ivan@example.com"].Username = "ivan_petrov"
	users.usersByEmail["ivan@example.com"].Email = "other@example.com"
	delete(users.usersByEmail, "ivan@example.com")
	users.usersByEmail["other@example.com"] = &models.User{ID: uuid.New(), Email: "other@example.com", Username: "ivan_petrov"}

	_, err = svc.Register(ctx, validRegisterInput())
	if !errors.Is(err, apperror.ErrUserAlreadyExists) {
		t.Fatalf("ожидалась ошибка занятого username, получили %v", err)
	}
}

func TestAuthService_Register_OverwritesPending(t *testing.T) {
	svc, registrations, _ := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	first, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("первая заявка вернула ошибку: %v", err)
	}

	in := validRegisterInput()
	in.Username = "ivan_new"
	second, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("повторная заявка вернула ошибку: %v", err)
	}

	if len(registrations.pending) != 1 {
		t.Fatalf("повторная заявка должна перезаписать старую, заявок %d", len(registrations.pending))
	}
	if registrations.pending["ivan@example.com"].Username != "ivan_new" {
		t.Fatalf("данные заявки должны быть заменены")
	}

	// Старый код больше не действует
	_, err = svc.VerifyEmail(ctx, "ivan@example.com", first.Code, nil)
	if first.Code != second.Code && !errors.Is(err, apperror.ErrInvalidVerifyCode) {
		t.Fatalf("старый код должен быть отклонён, получили %v", err)
	}

	res, err := svc.VerifyEmail(ctx, "ivan@example.com", second.Code, nil)
	if err != nil {
		t.Fatalf("подтверждение новым кодом вернуло ошибку: %v", err)
	}
	if res.User.Username != "ivan_new" {
		t.Fatalf("аккаунт должен создаваться из последней заявки")
	}
}

func TestAuthService_Register_StoresOptionalFields(t *testing.T) {
	svc, registrations, _ := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	phone := "+79161234567"
	dob := "1990-05-12"
	gender := "male"
	in := validRegisterInput()
	in.Phone = &phone
	in.DateOfBirth = &dob
	in.Gender = &gender

	reg, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("register вернул ошибку: %v", err)
	}

	pending := registrations.pending["ivan@example.com"]
	if pending.Phone == nil || *pending.Phone != phone {
		t.Fatalf("телефон должен сохраняться в заявке, получили %v", pending.Phone)
	}
	if pending.Gender == nil || *pending.Gender != gender {
		t.Fatalf("пол должен сохраняться в заявке, получили %v", pending.Gender)
	}
	if pending.DateOfBirth == nil || pending.DateOfBirth.Format("2006-01-02") != dob {
		t.Fatalf("дата рождения должна сохраняться в заявке, получили %v", pending.DateOfBirth)
	}

	res, err := svc.VerifyEmail(ctx, "ivan@example.com", reg.Code, nil)
	if err != nil {
		t.Fatalf("подтверждение вернуло ошибку: %v", err)
	}
	if res.User.Phone == nil || *res.User.Phone != phone {
		t.Fatalf("телефон из заявки должен попасть в аккаунт")
	}
	if res.User.DateOfBirth == nil || res.User.DateOfBirth.Format("2006-01-02") != dob {
		t.Fatalf("дата рождения из заявки должна попасть в аккаунт")
	}
	if res.User.Gender == nil || *res.User.Gender != gender {
		t.Fatalf("пол из заявки должен попасть в аккаунт")
	}
}

func TestAuthService_Register_OptionalFieldsValidated(t *testing.T) {
	svc, _, _ := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	badPhone := "not-a-phone"
	in := validRegisterInput()
	in.Phone = &badPhone
	if _, err := svc.Register(ctx, in); !apperror.IsValidation(err) {
		t.Fatalf("некорректный телефон должен отклоняться, получили %v", err)
	}

	badGender := "unknown"
	in = validRegisterInput()
	in.Gender = &badGender
	if _, err := svc.Register(ctx, in); !apperror.IsValidation(err) {
		t.Fatalf("некорректный пол должен отклоняться, получили %v", err)
	}

	badDob := "12.05.1990"
	in = validRegisterInput()
	in.DateOfBirth = &badDob
	if _, err := svc.Register(ctx, in); !apperror.IsValidation(err) {
		t.Fatalf("некорректная дата рождения должна отклоняться, получили %v", err)
	}
}

func TestAuthService_Register_UsernameHeldByPending(t *testing.T) {
	svc, registrations, _ := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("первая заявка вернула ошибку: %v", err)
	}

	// Тот же username под другим email должен получить конфликт сразу,
	// а не на шаге подтверждения
	in := validRegisterInput()
	in.Email = "boris@example.com"
	_, err := svc.Register(ctx, in)
	if !errors.Is(err, apperror.ErrUserAlreadyExists) {
		t.Fatalf("username занят чужой заявкой, ожидался конфликт, получили %v", err)
	}
	if _, ok := registrations.pending["boris@example.com"]; ok {
		t.Fatalf("конфликтующая заявка не должна сохраняться")
	}

	// Перезапись собственной заявки тем же username остаётся доступной
	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("повторная заявка на свой email вернула ошибку: %v", err)
	}
}

func TestAuthService_Register_SucceedsWhenEmailDeliveryFails(t *testing.T) {
	users := newMockAuthUserStore()
	registrations := newMockRegistrationStore(users)
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	recovery := goroutine.NewRecoveryHandler(logger.Log)
	sender := &mockSender{err: errors.New("smtp: connection refused")}
	svc := NewAuthService(registrations, users, tokenManager, sender, recovery, 15*time.Minute, bcrypt.MinCost)
	ctx := context.Background()

	// Сбой доставки письма не должен ронять регистрацию: заявка и код
	// остаются на сервере, подтверждение по-прежнему возможно
	reg, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register при сбое отправки вернул ошибку: %v", err)
	}
	if len(registrations.pending) != 1 {
		t.Fatalf("заявка должна сохраниться несмотря на сбой отправки")
	}

	res, err := svc.VerifyEmail(ctx, "ivan@example.com", reg.Code, nil)
	if err != nil {
		t.Fatalf("подтверждение после сбоя отправки вернуло ошибку: %v", err)
	}
	if res.User == nil || !res.User.EmailVerified {
		t.Fatalf("аккаунт должен быть создан и подтверждён")
	}
}

func TestAuthService_VerifyEmail_SecondAttemptFails(t *testing.T) {
	svc, registrations, users := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register вернул ошибку: %v", err)
	}
	if _, err := svc.VerifyEmail(ctx, "ivan@example.com", reg.Code, nil); err != nil {
		t.Fatalf("первое подтверждение вернуло ошибку: %v", err)
	}

	// Заявка уже израсходована: повторное подтверждение не должно
	// создавать второй аккаунт
	_, err = svc.VerifyEmail(ctx, "ivan@example.com", reg.Code, nil)
	if !errors.Is(err, apperror.ErrRegistrationNotFound) {
		t.Fatalf("повторное подтверждение должно вернуть not found, получили %v", err)
	}
	if len(users.usersByEmail) != 1 {
		t.Fatalf("ожидался ровно один аккаунт, получили %d", len(users.usersByEmail))
	}
	if len(registrations.pending) != 0 {
		t.Fatalf("заявка должна остаться израсходованной")
	}
}

func TestAuthService_VerifyEmail_PromotesAtomically(t *testing.T) {
	svc, registrations, users := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register вернул ошибку: %v", err)
	}

	res, err := svc.VerifyEmail(ctx, "ivan@example.com", reg.Code, map[string]string{"ip": "127.0.0.1", "user_agent": "test"})
	if err != nil {
		t.Fatalf("verify вернул ошибку: %v", err)
	}

	if res.User == nil || res.User.ID == uuid.Nil {
		t.Fatalf("должен быть создан аккаунт")
	}
	if !res.User.EmailVerified {
		t.Fatalf("email должен быть помечен подтверждённым")
	}
	if res.SmokingStatus == nil || res.SmokingStatus.UserID != res.User.ID {
		t.Fatalf("вместе с аккаунтом должна создаваться запись статистики")
	}
	if res.TokenPair == nil || res.TokenPair.AccessToken == "" || res.TokenPair.RefreshToken == "" {
		t.Fatalf("после подтверждения выдаётся пара токенов")
	}
	if len(registrations.pending) != 0 {
		t.Fatalf("заявка должна быть удалена после подтверждения")
	}
	if len(registrations.verifications["ivan@example.com"]) != 0 {
		t.Fatalf("журнал кодов должен быть очищен")
	}
	if len(users.sessions) != 1 {
		t.Fatalf("ожидалась одна сессия, получили %d", len(users.sessions))
	}
}

func TestAuthService_VerifyEmail_WrongCodeKeepsPending(t *testing.T) {
	svc, registrations, users := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register вернул ошибку: %v", err)
	}

	wrong := "000000"
	if wrong == reg.Code {
		wrong = "000001"
	}

	_, err = svc.VerifyEmail(ctx, "ivan@example.com", wrong, nil)
	if !errors.Is(err, apperror.ErrInvalidVerifyCode) {
		t.Fatalf("ожидалась ошибка неверного кода, получили %v", err)
	}

	// Неудачная попытка ничего не меняет
	if len(registrations.pending) != 1 {
		t.Fatalf("заявка должна остаться после неверного кода")
	}
	if len(users.usersByEmail) != 0 {
		t.Fatalf("аккаунт не должен создаваться при неверном коде")
	}

	if _, err := svc.VerifyEmail(ctx, "ivan@example.com", reg.Code, nil); err != nil {
		t.Fatalf("повторная попытка с верным кодом должна пройти: %v", err)
	}
}

func TestAuthService_VerifyEmail_ExpiredCode(t *testing.T) {
	svc, _, _ := newTestAuthService(-time.Minute)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register вернул ошибку: %v", err)
	}

	_, err = svc.VerifyEmail(ctx, "ivan@example.com", reg.Code, nil)
	if !errors.Is(err, apperror.ErrInvalidVerifyCode) {
		t.Fatalf("просроченный код должен быть отклонён, получили %v", err)
	}
}

func TestAuthService_VerifyEmail_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(15 * time.Minute)

	_, err := svc.VerifyEmail(context.Background(), "nobody@example.com", "123456", nil)
	if !errors.Is(err, apperror.ErrRegistrationNotFound) {
		t.Fatalf("ожидалась ошибка отсутствующей заявки, получили %v", err)
	}
}

func TestAuthService_ResendCode_InvalidatesOldCode(t *testing.T) {
	svc, registrations, _ := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register вернул ошибку: %v", err)
	}

	resent, err := svc.ResendCode(ctx, "ivan@example.com")
	if err != nil {
		t.Fatalf("resend вернул ошибку: %v", err)
	}

	if len(registrations.verifications["ivan@example.com"]) != 2 {
		t.Fatalf("каждая выдача кода добавляет запись в журнал")
	}

	if reg.Code != resent.Code {
		_, err = svc.VerifyEmail(ctx, "ivan@example.com", reg.Code, nil)
		if !errors.Is(err, apperror.ErrInvalidVerifyCode) {
			t.Fatalf("после повторной выдачи старый код недействителен, получили %v", err)
		}
	}

	if _, err := svc.VerifyEmail(ctx, "ivan@example.com", resent.Code, nil); err != nil {
		t.Fatalf("новый код должен приниматься: %v", err)
	}
}

func TestAuthService_ResendCode_NoPending(t *testing.T) {
	svc, _, _ := newTestAuthService(15 * time.Minute)

	_, err := svc.ResendCode(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrRegistrationNotFound) {
		t.Fatalf("без заявки код не выдаётся, получили %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _, users := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.New(),
		Username:     "ivan_petrov",
		Email:        "ivan@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	users.usersByEmail[user.Email] = user
	users.usersByID[user.ID] = user
	users.statuses[user.ID] = &models.SmokingStatus{UserID: user.ID, SmokeFreeDays: 5}

	res, err := svc.Login(ctx, LoginInput{Email: "Ivan@Example.com", Password: "Password123"}, nil)
	if err != nil {
		t.Fatalf("login вернул ошибку: %v", err)
	}
	if res.TokenPair.AccessToken == "" {
		t.Fatalf("ожидался access токен")
	}
	if res.SmokingStatus == nil || res.SmokingStatus.SmokeFreeDays != 5 {
		t.Fatalf("вместе с токенами возвращается статистика")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("last_login_at должен обновляться при входе")
	}

	_, err = svc.Login(ctx, LoginInput{Email: "ivan@example.com", Password: "WrongPass1"}, nil)
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("неверный пароль должен давать единую ошибку, получили %v", err)
	}

	_, err = svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "Password123"}, nil)
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("неизвестный email должен давать ту же ошибку, получили %v", err)
	}

	user.IsActive = false
	if _, err := svc.Login(ctx, LoginInput{Email: "ivan@example.com", Password: "Password123"}, nil); err == nil {
		t.Fatalf("заблокированный аккаунт не должен входить")
	}
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	svc, _, users := newTestAuthService(15 * time.Minute)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "ivan@example.com", IsActive: true}
	users.usersByID[user.ID] = user

	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	pair, _, refreshExp, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}
	users.sessions[pair.RefreshToken] = &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    refreshExp,
	}

	res, err := svc.Refresh(ctx, pair.RefreshToken, nil)
	if err != nil {
		t.Fatalf("refresh вернул ошибку: %v", err)
	}
	if res.TokenPair.RefreshToken == pair.RefreshToken {
		t.Fatalf("ожидалась ротация refresh токена")
	}
	if _, ok := users.sessions[pair.RefreshToken]; ok {
		t.Fatalf("старая сессия должна быть удалена")
	}
	if _, ok := users.sessions[res.TokenPair.RefreshToken]; !ok {
		t.Fatalf("новая сессия должна быть сохранена")
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, _, users := newTestAuthService(15 * time.Minute)

	user := &models.User{ID: uuid.New(), Email: "ivan@example.com", IsActive: true}
	users.usersByID[user.ID] = user

	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	pair, _, _, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}

	// Access токен подписан другим секретом и не содержит token_type
	if _, err := svc.Refresh(context.Background(), pair.AccessToken, nil); err == nil {
		t.Fatalf("access токен не должен приниматься как refresh")
	}
}

func TestAuthService_Refresh_RevokedSession(t *testing.T) {
	svc, _, users := newTestAuthService(15 * time.Minute)

	user := &models.User{ID: uuid.New(), Email: "ivan@example.com", IsActive: true}
	users.usersByID[user.ID] = user

	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	pair, _, _, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}

	// Токен валиден, но сессии в хранилище нет
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken, nil); err == nil {
		t.Fatalf("отозванная сессия не должна обновляться")
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, users := newTestAuthService(15 * time.Minute)

	users.sessions["token"] = &models.Session{ID: uuid.New(), RefreshToken: "token"}
	if err := svc.Logout(context.Background(), "token"); err != nil {
		t.Fatalf("logout вернул ошибку: %v", err)
	}
	if len(users.sessions) != 0 {
		t.Fatalf("сессия должна быть удалена")
	}
}
