package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
)

type mockMembershipStore struct {
	plans map[string]*models.MembershipPlan
}

func (m *mockMembershipStore) ListPlans(ctx context.Context) ([]models.MembershipPlan, error) {
	var plans []models.MembershipPlan
	for _, plan := range m.plans {
		plans = append(plans, *plan)
	}
	return plans, nil
}

func (m *mockMembershipStore) GetPlanByCode(ctx context.Context, code string) (*models.MembershipPlan, error) {
	if plan, ok := m.plans[code]; ok {
		return plan, nil
	}
	return nil, repository.ErrMembershipPlanNotFound
}

type mockMembershipUserStore struct {
	users map[uuid.UUID]*models.User
}

func (m *mockMembershipUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockMembershipUserStore) UpdateMembership(ctx context.Context, userID uuid.UUID, membership string) error {
	if user, ok := m.users[userID]; ok {
		user.Membership = membership
	}
	return nil
}

func TestMembershipService_Upgrade(t *testing.T) {
	user := &models.User{ID: uuid.New(), Membership: models.MembershipFree}
	plans := &mockMembershipStore{plans: map[string]*models.MembershipPlan{
		"premium": {ID: uuid.New(), Code: "premium", Name: "Премиум", PriceMonthly: 499},
	}}
	users := &mockMembershipUserStore{users: map[uuid.UUID]*models.User{user.ID: user}}
	hub := &mockBroadcaster{}
	svc := NewMembershipService(plans, users, hub)
	ctx := context.Background()

	upgraded, err := svc.Upgrade(ctx, user.ID, "premium")
	assert.NoError(t, err)
	assert.Equal(t, "premium", upgraded.Membership)

	assert.Len(t, hub.events, 1)
	assert.Equal(t, "membership_changed", hub.events[0].event)

	// Повторное подключение того же тарифа отклоняется
	_, err = svc.Upgrade(ctx, user.ID, "premium")
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestMembershipService_Upgrade_UnknownPlan(t *testing.T) {
	user := &models.User{ID: uuid.New(), Membership: models.MembershipFree}
	plans := &mockMembershipStore{plans: map[string]*models.MembershipPlan{}}
	users := &mockMembershipUserStore{users: map[uuid.UUID]*models.User{user.ID: user}}
	svc := NewMembershipService(plans, users, &mockBroadcaster{})

	_, err := svc.Upgrade(context.Background(), user.ID, "vip")
	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
