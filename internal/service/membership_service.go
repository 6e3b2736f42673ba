package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/smokefree-backend/internal/logger"
	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
)

// MembershipStore описывает каталог тарифов.
type MembershipStore interface {
	ListPlans(ctx context.Context) ([]models.MembershipPlan, error)
	GetPlanByCode(ctx context.Context, code string) (*models.MembershipPlan, error)
}

// MembershipUserStore описывает нужную сервису часть хранилища пользователей.
type MembershipUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateMembership(ctx context.Context, userID uuid.UUID, membership string) error
}

// MembershipService управляет тарифами подписки.
type MembershipService struct {
	plans MembershipStore
	users MembershipUserStore
	hub   Broadcaster
}

// NewMembershipService создаёт сервис подписок.
func NewMembershipService(plans MembershipStore, users MembershipUserStore, hub Broadcaster) *MembershipService {
	return &MembershipService{plans: plans, users: users, hub: hub}
}

// ListPlans возвращает каталог тарифов.
func (s *MembershipService) ListPlans(ctx context.Context) ([]models.MembershipPlan, error) {
	return s.plans.ListPlans(ctx)
}

// Upgrade переводит пользователя на выбранный тариф.
func (s *MembershipService) Upgrade(ctx context.Context, userID uuid.UUID, planCode string) (*models.User, error) {
	plan, err := s.plans.GetPlanByCode(ctx, planCode)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipPlanNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "тариф не найден")
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	if user.Membership == plan.Code {
		return nil, apperror.New(apperror.ErrCodeConflict, "этот тариф уже подключён")
	}

	if err := s.users.UpdateMembership(ctx, userID, plan.Code); err != nil {
		return nil, err
	}
	user.Membership = plan.Code

	if s.hub != nil {
		if err := s.hub.BroadcastToUser(userID, "membership_changed", map[string]string{"membership": plan.Code}); err != nil {
			logger.Log.WithField("user_id", userID).WithError(err).Warn("membership service: не удалось отправить уведомление")
		}
	}

	return user, nil
}
