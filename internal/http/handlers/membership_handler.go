package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/smokefree-backend/internal/dto"
	"github.com/ignatzorin/smokefree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/smokefree-backend/internal/service"
)

// MembershipHandler предоставляет HTTP слой тарифов подписки.
type MembershipHandler struct {
	membership *service.MembershipService
}

// NewMembershipHandler создаёт хэндлер.
func NewMembershipHandler(membership *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membership: membership}
}

// ListPlans обрабатывает GET /api/membership/plans.
func (h *MembershipHandler) ListPlans(c *gin.Context) {
	plans, err := h.membership.ListPlans(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Upgrade обрабатывает POST /api/membership/upgrade.
func (h *MembershipHandler) Upgrade(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.UpgradeMembershipRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.membership.Upgrade(c.Request.Context(), userID, req.PlanCode)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
