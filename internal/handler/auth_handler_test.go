package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hero-academy/academy-api/internal/middleware"
	"github.com/hero-academy/academy-api/internal/models"
	"github.com/hero-academy/academy-api/internal/service"
)

func newAuthHandlerFixture() *AuthHandler {
	svc := service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: 15 * time.Minute,
	})
	return NewAuthHandler(svc)
}

func TestAuthHandlerSessionAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)

	handler.Session(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestAuthHandlerSessionAuthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:   "teacher-1",
		Email:    "guru@akademi.id",
		FullName: "Guru Satu",
		Role:     models.RoleTeacher,
	})

	handler.Session(c)

	require.Equal(t, http.StatusOK, w.Code)
	var session models.SessionInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "teacher-1", session.User.ID)
	assert.Equal(t, models.RoleTeacher, session.User.Role)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)

	handler.Me(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["error"])
}
