package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы плана отказа от курения.
const (
	PlanStatusDraft     = "draft"
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusAbandoned = "abandoned"
)

// QuitPlan описывает план отказа от курения, создаваемый пошаговым мастером.
// У пользователя может быть не более одного плана в статусе draft или active.
type QuitPlan struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	UserID            uuid.UUID  `db:"user_id" json:"user_id"`
	Reason            *string    `db:"reason" json:"reason,omitempty"`
	TargetQuitDate    *time.Time `db:"target_quit_date" json:"target_quit_date,omitempty"`
	CigarettesPerDay  int        `db:"cigarettes_per_day" json:"cigarettes_per_day"`
	PricePerPack      float64    `db:"price_per_pack" json:"price_per_pack"`
	CigarettesPerPack int        `db:"cigarettes_per_pack" json:"cigarettes_per_pack"`
	Status            string     `db:"status" json:"status"`
	CurrentStep       int        `db:"current_step" json:"current_step"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// QuitPlanStage - один этап поэтапного снижения, генерируется при активации плана.
type QuitPlanStage struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PlanID           uuid.UUID `db:"plan_id" json:"plan_id"`
	StageNumber      int       `db:"stage_number" json:"stage_number"`
	Title            string    `db:"title" json:"title"`
	TargetCigarettes int       `db:"target_cigarettes" json:"target_cigarettes"`
	StartsAt         time.Time `db:"starts_at" json:"starts_at"`
	EndsAt           time.Time `db:"ends_at" json:"ends_at"`
	Completed        bool      `db:"completed" json:"completed"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
