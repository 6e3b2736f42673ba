package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/repository/common"
)

// ErrPlanNotFound возвращается, когда план не найден.
var ErrPlanNotFound = errors.New("quit plan not found")

// PlanRepository отвечает за таблицы quit_plans и quit_plan_stages.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository создаёт экземпляр репозитория.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create создаёт черновик плана.
func (r *PlanRepository) Create(ctx context.Context, plan *models.QuitPlan) error {
	query := `
		INSERT INTO quit_plans (user_id, reason, target_quit_date, cigarettes_per_day, price_per_pack, cigarettes_per_pack, status, current_step)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		plan.UserID,
		plan.Reason,
		plan.TargetQuitDate,
		plan.CigarettesPerDay,
		plan.PricePerPack,
		plan.CigarettesPerPack,
		plan.Status,
		plan.CurrentStep,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt); err != nil {
		return fmt.Errorf("plan repository: create %w", err)
	}

	return nil
}

// GetCurrentForUser возвращает текущий (draft или active) план пользователя.
func (r *PlanRepository) GetCurrentForUser(ctx context.Context, userID uuid.UUID) (*models.QuitPlan, error) {
	var plan models.QuitPlan
	query := `
		SELECT * FROM quit_plans
		WHERE user_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &plan, query, userID, models.PlanStatusDraft, models.PlanStatusActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("plan repository: get current for user %w", err)
	}

	return &plan, nil
}

// ListForUser возвращает все планы пользователя, включая завершённые.
func (r *PlanRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.QuitPlan, error) {
	var plans []models.QuitPlan
	query := `SELECT * FROM quit_plans WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &plans, query, userID); err != nil {
		return nil, fmt.Errorf("plan repository: list for user %w", err)
	}

	return plans, nil
}

// Update сохраняет изменённые поля плана.
func (r *PlanRepository) Update(ctx context.Context, plan *models.QuitPlan) error {
	query := `
		UPDATE quit_plans
		SET reason = $1,
			target_quit_date = $2,
			cigarettes_per_day = $3,
			price_per_pack = $4,
			cigarettes_per_pack = $5,
			status = $6,
			current_step = $7,
			updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		plan.Reason,
		plan.TargetQuitDate,
		plan.CigarettesPerDay,
		plan.PricePerPack,
		plan.CigarettesPerPack,
		plan.Status,
		plan.CurrentStep,
		plan.ID,
	).Scan(&plan.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("plan repository: update %w", err)
	}

	return nil
}

// ReplaceStages перезаписывает этапы плана в одной транзакции.
// Вставка идёт батчем, чтобы активация мастера не делала N запросов.
func (r *PlanRepository) ReplaceStages(ctx context.Context, planID uuid.UUID, stages []models.QuitPlanStage) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM quit_plan_stages WHERE plan_id = $1`, planID); err != nil {
			return fmt.Errorf("delete stages: %w", err)
		}

		inserter := common.NewBatchInserter(tx, `
			INSERT INTO quit_plan_stages (plan_id, stage_number, title, target_cigarettes, starts_at, ends_at, completed)
		`, 7, 50)

		for _, stage := range stages {
			if err := inserter.Add(ctx, planID, stage.StageNumber, stage.Title, stage.TargetCigarettes, stage.StartsAt, stage.EndsAt, stage.Completed); err != nil {
				return err
			}
		}

		return inserter.Flush(ctx)
	})
	if err != nil {
		return fmt.Errorf("plan repository: replace stages %w", err)
	}

	return nil
}

// ListStages возвращает этапы плана по порядку.
func (r *PlanRepository) ListStages(ctx context.Context, planID uuid.UUID) ([]models.QuitPlanStage, error) {
	var stages []models.QuitPlanStage
	query := `SELECT * FROM quit_plan_stages WHERE plan_id = $1 ORDER BY stage_number ASC`
	if err := r.db.SelectContext(ctx, &stages, query, planID); err != nil {
		return nil, fmt.Errorf("plan repository: list stages %w", err)
	}

	return stages, nil
}

// CompleteStage отмечает этап выполненным.
func (r *PlanRepository) CompleteStage(ctx context.Context, planID, stageID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE quit_plan_stages SET completed = TRUE WHERE id = $1 AND plan_id = $2`, stageID, planID)
	if err != nil {
		return fmt.Errorf("plan repository: complete stage %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("plan repository: complete stage rows affected %w", err)
	}
	if affected == 0 {
		return ErrPlanNotFound
	}

	return nil
}
