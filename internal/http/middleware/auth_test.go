package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/smokefree-backend/internal/models"
	"github.com/ignatzorin/smokefree-backend/internal/service"
)

func setupAuthRouter(tokens *service.TokenManager) (*gin.Engine, *uuid.UUID) {
	gin.SetMode(gin.TestMode)
	var seenUserID uuid.UUID
	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokens), func(c *gin.Context) {
		seenUserID = c.MustGet(ContextUserIDKey).(uuid.UUID)
		c.Status(http.StatusOK)
	})
	return r, &seenUserID
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	tokens := service.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	r, _ := setupAuthRouter(tokens)

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedToken(t *testing.T) {
	tokens := service.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	r, _ := setupAuthRouter(tokens)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	tokens := service.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	r, _ := setupAuthRouter(tokens)

	user := &models.User{ID: uuid.New(), Membership: models.MembershipFree}
	pair, _, _, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	// Refresh токен подписан другим секретом и не проходит как access
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := service.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	r, seenUserID := setupAuthRouter(tokens)

	user := &models.User{ID: uuid.New(), Membership: models.MembershipPremium}
	pair, _, _, err := tokens.GeneratePair(user)
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID, *seenUserID)
}
