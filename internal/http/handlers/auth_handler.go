package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/smokefree-backend/internal/dto"
	"github.com/ignatzorin/smokefree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/smokefree-backend/internal/service"
)

// AuthHandler предоставляет HTTP слой регистрации с подтверждением email.
type AuthHandler struct {
	auth *service.AuthService
	// devMode разрешает возвращать код подтверждения в ответе,
	// когда SMTP не настроен
	devMode bool
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService, devMode bool) *AuthHandler {
	return &AuthHandler{auth: auth, devMode: devMode}
}

// Register обрабатывает POST /api/auth/register.
// Аккаунт не создаётся: сохраняется заявка, на email уходит код.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	resp := dto.RegisterResponse{
		Email:   result.Email,
		Message: "код подтверждения отправлен на email",
	}
	if h.devMode {
		resp.DebugCode = result.Code
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyEmail обрабатывает POST /api/auth/verify-email.
// При верном коде заявка атомарно превращается в аккаунт.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.auth.VerifyEmail(c.Request.Context(), req.Email, req.Code, requestMeta(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		User:          result.User,
		Token:         result.TokenPair.AccessToken,
		RefreshToken:  result.TokenPair.RefreshToken,
		SmokingStatus: result.SmokingStatus,
	})
}

// ResendVerification обрабатывает POST /api/auth/resend-verification.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.auth.ResendCode(c.Request.Context(), req.Email)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	resp := dto.RegisterResponse{
		Email:   result.Email,
		Message: "новый код подтверждения отправлен на email",
	}
	if h.devMode {
		resp.DebugCode = result.Code
	}

	c.JSON(http.StatusOK, resp)
}

// Login обрабатывает POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, requestMeta(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		User:          result.User,
		Token:         result.TokenPair.AccessToken,
		RefreshToken:  result.TokenPair.RefreshToken,
		SmokingStatus: result.SmokingStatus,
	})
}

// RefreshToken обрабатывает POST /api/auth/refresh-token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, requestMeta(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		User:         result.User,
		Token:        result.TokenPair.AccessToken,
		RefreshToken: result.TokenPair.RefreshToken,
	})
}

// Logout обрабатывает POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "выход выполнен", nil)
}

// requestMeta собирает метаданные запроса для сохранения в сессии.
func requestMeta(c *gin.Context) map[string]string {
	return map[string]string{
		"user_agent": c.GetHeader("User-Agent"),
		"ip":         c.ClientIP(),
	}
}
