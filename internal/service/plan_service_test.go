package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
)

// mockPlanStore реализует PlanStore для тестов.
type mockPlanStore struct {
	plans  map[uuid.UUID]*models.QuitPlan
	stages map[uuid.UUID][]models.QuitPlanStage
}

func newMockPlanStore() *mockPlanStore {
	return &mockPlanStore{
		plans:  make(map[uuid.UUID]*models.QuitPlan),
		stages: make(map[uuid.UUID][]models.QuitPlanStage),
	}
}

func (m *mockPlanStore) Create(ctx context.Context, plan *models.QuitPlan) error {
	plan.ID = uuid.New()
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockPlanStore) GetCurrentForUser(ctx context.Context, userID uuid.UUID) (*models.QuitPlan, error) {
	for _, plan := range m.plans {
		if plan.UserID == userID && (plan.Status == models.PlanStatusDraft || plan.Status == models.PlanStatusActive) {
			return plan, nil
		}
	}
	return nil, repository.ErrPlanNotFound
}

func (m *mockPlanStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.QuitPlan, error) {
	var plans []models.QuitPlan
	for _, plan := range m.plans {
		if plan.UserID == userID {
			plans = append(plans, *plan)
		}
	}
	return plans, nil
}

func (m *mockPlanStore) Update(ctx context.Context, plan *models.QuitPlan) error {
	if _, ok := m.plans[plan.ID]; !ok {
		return repository.ErrPlanNotFound
	}
	plan.UpdatedAt = time.Now()
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockPlanStore) ReplaceStages(ctx context.Context, planID uuid.UUID, stages []models.QuitPlanStage) error {
	saved := make([]models.QuitPlanStage, len(stages))
	copy(saved, stages)
	for i := range saved {
		saved[i].ID = uuid.New()
	}
	m.stages[planID] = saved
	return nil
}

func (m *mockPlanStore) ListStages(ctx context.Context, planID uuid.UUID) ([]models.QuitPlanStage, error) {
	return m.stages[planID], nil
}

func (m *mockPlanStore) CompleteStage(ctx context.Context, planID, stageID uuid.UUID) error {
	for i := range m.stages[planID] {
		if m.stages[planID][i].ID == stageID {
			m.stages[planID][i].Completed = true
			return nil
		}
	}
	return repository.ErrPlanNotFound
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func futureDate(days int) *string {
	date := time.Now().AddDate(0, 0, days).Format("2006-01-02")
	return &date
}

func completeWizard(t *testing.T, svc *PlanService, userID uuid.UUID, days, cigarettes int) *models.QuitPlan {
	t.Helper()
	ctx := context.Background()

	_, err := svc.StartPlan(ctx, userID, "хочу бросить ради здоровья")
	assert.NoError(t, err)

	_, err = svc.SubmitStep(ctx, userID, PlanStepInput{Step: 2, TargetQuitDate: futureDate(days)})
	assert.NoError(t, err)

	plan, err := svc.SubmitStep(ctx, userID, PlanStepInput{
		Step:             3,
		CigarettesPerDay: intPtr(cigarettes),
		PricePerPack:     floatPtr(200),
	})
	assert.NoError(t, err)
	return plan
}

func TestPlanService_StartPlan(t *testing.T) {
	store := newMockPlanStore()
	svc := NewPlanService(store)
	ctx := context.Background()
	userID := uuid.New()

	plan, err := svc.StartPlan(ctx, userID, "хочу бросить")
	assert.NoError(t, err)
	assert.Equal(t, models.PlanStatusDraft, plan.Status)
	assert.Equal(t, 1, plan.CurrentStep)

	// Второй незавершённый план создать нельзя
	_, err = svc.StartPlan(ctx, userID, "ещё раз")
	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestPlanService_SubmitStep_EnforcesOrder(t *testing.T) {
	store := newMockPlanStore()
	svc := NewPlanService(store)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.StartPlan(ctx, userID, "хочу бросить")
	assert.NoError(t, err)

	// Шаг 3 раньше шага 2 отклоняется
	_, err = svc.SubmitStep(ctx, userID, PlanStepInput{
		Step:             3,
		CigarettesPerDay: intPtr(20),
		PricePerPack:     floatPtr(200),
	})
	assert.Error(t, err)

	plan, err := svc.SubmitStep(ctx, userID, PlanStepInput{Step: 2, TargetQuitDate: futureDate(30)})
	assert.NoError(t, err)
	assert.Equal(t, 2, plan.CurrentStep)

	// Повторная отправка пройденного шага перезаписывает данные
	plan, err = svc.SubmitStep(ctx, userID, PlanStepInput{Step: 2, TargetQuitDate: futureDate(60)})
	assert.NoError(t, err)
	assert.Equal(t, 2, plan.CurrentStep)
}

func TestPlanService_SubmitStep_Validation(t *testing.T) {
	store := newMockPlanStore()
	svc := NewPlanService(store)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.StartPlan(ctx, userID, "хочу бросить")
	assert.NoError(t, err)

	// Дата в прошлом
	past := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	_, err = svc.SubmitStep(ctx, userID, PlanStepInput{Step: 2, TargetQuitDate: strPtr(past)})
	assert.Error(t, err)

	// Некорректный формат даты
	_, err = svc.SubmitStep(ctx, userID, PlanStepInput{Step: 2, TargetQuitDate: strPtr("31-12-2026")})
	assert.Error(t, err)

	_, err = svc.SubmitStep(ctx, userID, PlanStepInput{Step: 2, TargetQuitDate: futureDate(30)})
	assert.NoError(t, err)

	// Ноль сигарет в день вне допустимого диапазона
	_, err = svc.SubmitStep(ctx, userID, PlanStepInput{
		Step:             3,
		CigarettesPerDay: intPtr(0),
		PricePerPack:     floatPtr(200),
	})
	assert.Error(t, err)
}

func TestPlanService_ActivatePlan_GeneratesStages(t *testing.T) {
	store := newMockPlanStore()
	svc := NewPlanService(store)
	ctx := context.Background()
	userID := uuid.New()

	completeWizard(t, svc, userID, 28, 20)

	plan, stages, err := svc.ActivatePlan(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, models.PlanStatusActive, plan.Status)

	// 28 дней по неделе на этап
	assert.Len(t, stages, 4)
	assert.Equal(t, 0, stages[len(stages)-1].TargetCigarettes)

	// Целевые значения не возрастают
	for i := 1; i < len(stages); i++ {
		assert.LessOrEqual(t, stages[i].TargetCigarettes, stages[i-1].TargetCigarettes)
		assert.Equal(t, i+1, stages[i].StageNumber)
	}
}

func TestPlanService_ActivatePlan_CapsStageCount(t *testing.T) {
	store := newMockPlanStore()
	svc := NewPlanService(store)
	ctx := context.Background()
	userID := uuid.New()

	// Год до целевой даты, но этапов не больше восьми
	completeWizard(t, svc, userID, 365, 40)

	_, stages, err := svc.ActivatePlan(ctx, userID)
	assert.NoError(t, err)
	assert.Len(t, stages, 8)
	assert.Equal(t, 0, stages[7].TargetCigarettes)
}

func TestPlanService_ActivatePlan_RequiresAllSteps(t *testing.T) {
	store := newMockPlanStore()
	svc := NewPlanService(store)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.StartPlan(ctx, userID, "хочу бросить")
	assert.NoError(t, err)

	_, _, err = svc.ActivatePlan(ctx, userID)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestPlanService_CompleteStage_FinishesPlan(t *testing.T) {
	store := newMockPlanStore()
	svc := NewPlanService(store)
	ctx := context.Background()
	userID := uuid.New()

	completeWizard(t, svc, userID, 10, 10)
	_, stages, err := svc.ActivatePlan(ctx, userID)
	assert.NoError(t, err)
	assert.Len(t, stages, 2)

	updated, err := svc.CompleteStage(ctx, userID, stages[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PlanStatusActive, updated.Status)

	updated, err = svc.CompleteStage(ctx, userID, stages[1].ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PlanStatusCompleted, updated.Status)

	// Завершённый план больше не текущий
	_, _, err = svc.GetCurrentPlan(ctx, userID)
	assert.ErrorIs(t, err, apperror.ErrPlanNotFound)
}

func TestPlanService_AbandonPlan(t *testing.T) {
	store := newMockPlanStore()
	svc := NewPlanService(store)
	ctx := context.Background()
	userID := uuid.New()

	completeWizard(t, svc, userID, 14, 15)

	assert.NoError(t, svc.AbandonPlan(ctx, userID))

	_, _, err := svc.GetCurrentPlan(ctx, userID)
	assert.ErrorIs(t, err, apperror.ErrPlanNotFound)

	// После отказа от плана можно начать новый
	_, err = svc.StartPlan(ctx, userID, "вторая попытка")
	assert.NoError(t, err)
}
