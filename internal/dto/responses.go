package dto

import (
	"github.com/ignatzorin/smokefree-backend/internal/models"
)

// RegisterResponse represents the response after starting registration
type RegisterResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
	// DebugCode is only populated outside production to ease manual testing
	DebugCode string `json:"debugCode,omitempty"`
}

// AuthResponse represents the response after verification, login or refresh
type AuthResponse struct {
	User          *models.User          `json:"user"`
	Token         string                `json:"token"`
	RefreshToken  string                `json:"refreshToken"`
	SmokingStatus *models.SmokingStatus `json:"smokingStatus,omitempty"`
}

// ProfileResponse represents the current user with smoking statistics
type ProfileResponse struct {
	*models.User
	SmokingStatus *models.SmokingStatus `json:"smokingStatus"`
}

// PlanResponse represents a quit plan with its generated stages
type PlanResponse struct {
	*models.QuitPlan
	Stages []models.QuitPlanStage `json:"stages"`
}

// NewPlanResponse creates a PlanResponse from components
func NewPlanResponse(plan *models.QuitPlan, stages []models.QuitPlanStage) *PlanResponse {
	return &PlanResponse{
		QuitPlan: plan,
		Stages:   stages,
	}
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
