package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/smokefree-backend/internal/models"
)

// ErrMembershipPlanNotFound возвращается, когда тариф не найден.
var ErrMembershipPlanNotFound = errors.New("membership plan not found")

// MembershipRepository отвечает за таблицу membership_plans.
type MembershipRepository struct {
	db *sqlx.DB
}

// NewMembershipRepository создаёт экземпляр репозитория.
func NewMembershipRepository(db *sqlx.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// ListPlans возвращает все тарифы по возрастанию цены.
func (r *MembershipRepository) ListPlans(ctx context.Context) ([]models.MembershipPlan, error) {
	query := `SELECT id, code, name, price_monthly, features, created_at FROM membership_plans ORDER BY price_monthly ASC`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("membership repository: list plans %w", err)
	}
	defer rows.Close()

	var plans []models.MembershipPlan
	for rows.Next() {
		var plan models.MembershipPlan
		var features pq.StringArray
		if err := rows.Scan(&plan.ID, &plan.Code, &plan.Name, &plan.PriceMonthly, &features, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("membership repository: scan plan %w", err)
		}
		plan.Features = []string(features)
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

// GetPlanByCode возвращает тариф по коду.
func (r *MembershipRepository) GetPlanByCode(ctx context.Context, code string) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	var features pq.StringArray

	query := `SELECT id, code, name, price_monthly, features, created_at FROM membership_plans WHERE code = $1`
	if err := r.db.QueryRowxContext(ctx, query, code).Scan(
		&plan.ID, &plan.Code, &plan.Name, &plan.PriceMonthly, &features, &plan.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipPlanNotFound
		}
		return nil, fmt.Errorf("membership repository: get plan by code %w", err)
	}

	plan.Features = []string(features)
	return &plan, nil
}
