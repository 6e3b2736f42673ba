package models

import (
	"time"

	"github.com/google/uuid"
)

// MembershipPlan описывает тариф подписки.
type MembershipPlan struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	PriceMonthly float64   `db:"price_monthly" json:"price_monthly"`
	Features     []string  `db:"features" json:"features"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
