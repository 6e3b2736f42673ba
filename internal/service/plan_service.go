package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
	"github.com/ignatzorin/smokefree-backend/internal/validation"
)

// Шаги мастера создания плана.
const (
	planStepReason   = 1
	planStepDate     = 2
	planStepSmoking  = 3
	planStepsTotal   = 3
	maxPlanStages    = 8
	stageDurationDay = 7
)

// PlanStore описывает зависимости PlanService от хранилища планов.
type PlanStore interface {
	Create(ctx context.Context, plan *models.QuitPlan) error
	GetCurrentForUser(ctx context.Context, userID uuid.UUID) (*models.QuitPlan, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.QuitPlan, error)
	Update(ctx context.Context, plan *models.QuitPlan) error
	ReplaceStages(ctx context.Context, planID uuid.UUID, stages []models.QuitPlanStage) error
	ListStages(ctx context.Context, planID uuid.UUID) ([]models.QuitPlanStage, error)
	CompleteStage(ctx context.Context, planID, stageID uuid.UUID) error
}

// PlanService реализует пошаговый мастер создания плана отказа от курения.
type PlanService struct {
	repo PlanStore
}

// PlanStepInput содержит данные одного шага мастера.
type PlanStepInput struct {
	Step              int
	TargetQuitDate    *string
	CigarettesPerDay  *int
	PricePerPack      *float64
	CigarettesPerPack *int
}

// NewPlanService создаёт сервис планов.
func NewPlanService(repo PlanStore) *PlanService {
	return &PlanService{repo: repo}
}

// StartPlan создаёт черновик плана. Если у пользователя уже есть черновик
// или активный план, возвращается конфликт.
func (s *PlanService) StartPlan(ctx context.Context, userID uuid.UUID, reason string) (*models.QuitPlan, error) {
	if err := validation.ValidateNonEmpty("причина", reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("причина", reason, 0, validation.MaxReasonLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if current, err := s.repo.GetCurrentForUser(ctx, userID); err == nil && current != nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "у вас уже есть незавершённый план")
	} else if err != nil && !errors.Is(err, repository.ErrPlanNotFound) {
		return nil, err
	}

	plan := &models.QuitPlan{
		UserID:      userID,
		Reason:      &reason,
		Status:      models.PlanStatusDraft,
		CurrentStep: planStepReason,
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// SubmitStep принимает данные очередного шага мастера. Шаги идут строго
// по порядку, повторная отправка текущего шага перезаписывает данные.
func (s *PlanService) SubmitStep(ctx context.Context, userID uuid.UUID, in PlanStepInput) (*models.QuitPlan, error) {
	plan, err := s.currentDraft(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Step < planStepDate || in.Step > planStepsTotal {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("номер шага должен быть от %d до %d", planStepDate, planStepsTotal))
	}
	if in.Step > plan.CurrentStep+1 {
		return nil, apperror.New(apperror.ErrCodeValidation, "шаги мастера нужно проходить по порядку")
	}

	switch in.Step {
	case planStepDate:
		if in.TargetQuitDate == nil || *in.TargetQuitDate == "" {
			return nil, apperror.New(apperror.ErrCodeValidation, "дата отказа обязательна")
		}
		target, err := time.Parse("2006-01-02", *in.TargetQuitDate)
		if err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "дата отказа должна быть в формате YYYY-MM-DD")
		}
		if !target.After(time.Now()) {
			return nil, apperror.New(apperror.ErrCodeValidation, "дата отказа должна быть в будущем")
		}
		plan.TargetQuitDate = &target
	case planStepSmoking:
		if in.CigarettesPerDay == nil || in.PricePerPack == nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "количество сигарет и цена пачки обязательны")
		}
		if err := validation.ValidateCigarettesPerDay(*in.CigarettesPerDay); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		if *in.PricePerPack <= 0 || *in.PricePerPack > validation.MaxPricePerPack {
			return nil, apperror.New(apperror.ErrCodeValidation, "некорректная цена пачки")
		}
		plan.CigarettesPerDay = *in.CigarettesPerDay
		plan.PricePerPack = *in.PricePerPack
		plan.CigarettesPerPack = 20
		if in.CigarettesPerPack != nil && *in.CigarettesPerPack > 0 {
			plan.CigarettesPerPack = *in.CigarettesPerPack
		}
	}

	if in.Step > plan.CurrentStep {
		plan.CurrentStep = in.Step
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// ActivatePlan завершает мастер: проверяет, что все шаги пройдены,
// генерирует этапы снижения и переводит план в статус active.
func (s *PlanService) ActivatePlan(ctx context.Context, userID uuid.UUID) (*models.QuitPlan, []models.QuitPlanStage, error) {
	plan, err := s.currentDraft(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if plan.CurrentStep < planStepsTotal || plan.TargetQuitDate == nil || plan.CigarettesPerDay == 0 {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "мастер не завершён, заполните все шаги")
	}

	stages := generateStages(plan)
	if err := s.repo.ReplaceStages(ctx, plan.ID, stages); err != nil {
		return nil, nil, err
	}

	plan.Status = models.PlanStatusActive
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, nil, err
	}

	saved, err := s.repo.ListStages(ctx, plan.ID)
	if err != nil {
		return nil, nil, err
	}

	return plan, saved, nil
}

// GetCurrentPlan возвращает текущий план со стадиями.
func (s *PlanService) GetCurrentPlan(ctx context.Context, userID uuid.UUID) (*models.QuitPlan, []models.QuitPlanStage, error) {
	plan, err := s.repo.GetCurrentForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, nil, apperror.ErrPlanNotFound
		}
		return nil, nil, err
	}

	stages, err := s.repo.ListStages(ctx, plan.ID)
	if err != nil {
		return nil, nil, err
	}

	return plan, stages, nil
}

// ListPlans возвращает все планы пользователя, включая завершённые.
func (s *PlanService) ListPlans(ctx context.Context, userID uuid.UUID) ([]models.QuitPlan, error) {
	return s.repo.ListForUser(ctx, userID)
}

// CompleteStage отмечает этап выполненным. Если выполнены все этапы,
// план переводится в статус completed.
func (s *PlanService) CompleteStage(ctx context.Context, userID, stageID uuid.UUID) (*models.QuitPlan, error) {
	plan, err := s.repo.GetCurrentForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, apperror.ErrPlanNotFound
		}
		return nil, err
	}
	if plan.Status != models.PlanStatusActive {
		return nil, apperror.New(apperror.ErrCodeValidation, "план ещё не активирован")
	}

	if err := s.repo.CompleteStage(ctx, plan.ID, stageID); err != nil {
		return nil, err
	}

	stages, err := s.repo.ListStages(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	allDone := len(stages) > 0
	for _, stage := range stages {
		if !stage.Completed {
			allDone = false
			break
		}
	}

	if allDone {
		plan.Status = models.PlanStatusCompleted
		if err := s.repo.Update(ctx, plan); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

// AbandonPlan переводит текущий план в статус abandoned.
func (s *PlanService) AbandonPlan(ctx context.Context, userID uuid.UUID) error {
	plan, err := s.repo.GetCurrentForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return apperror.ErrPlanNotFound
		}
		return err
	}

	plan.Status = models.PlanStatusAbandoned
	return s.repo.Update(ctx, plan)
}

func (s *PlanService) currentDraft(ctx context.Context, userID uuid.UUID) (*models.QuitPlan, error) {
	plan, err := s.repo.GetCurrentForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, apperror.ErrPlanNotFound
		}
		return nil, err
	}
	if plan.Status != models.PlanStatusDraft {
		return nil, apperror.New(apperror.ErrCodeConflict, "план уже активирован")
	}
	return plan, nil
}

// generateStages равномерно распределяет снижение от текущего количества
// сигарет до нуля по недельным этапам до целевой даты.
func generateStages(plan *models.QuitPlan) []models.QuitPlanStage {
	now := time.Now()
	days := int(plan.TargetQuitDate.Sub(now).Hours() / 24)
	if days < 1 {
		days = 1
	}

	count := (days + stageDurationDay - 1) / stageDurationDay
	if count < 1 {
		count = 1
	}
	if count > maxPlanStages {
		count = maxPlanStages
	}

	stageLen := time.Duration(days) * 24 * time.Hour / time.Duration(count)
	stages := make([]models.QuitPlanStage, 0, count)

	for i := 0; i < count; i++ {
		target := plan.CigarettesPerDay * (count - i - 1) / count
		stages = append(stages, models.QuitPlanStage{
			PlanID:           plan.ID,
			StageNumber:      i + 1,
			Title:            fmt.Sprintf("Этап %d: не более %d сигарет в день", i+1, target),
			TargetCigarettes: target,
			StartsAt:         now.Add(time.Duration(i) * stageLen),
			EndsAt:           now.Add(time.Duration(i+1) * stageLen),
		})
	}

	// Последний этап всегда ведёт к нулю
	stages[len(stages)-1].TargetCigarettes = 0

	return stages
}
