package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hero-academy/academy-api/internal/models"
)

func performPageGuard(t *testing.T, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/pages/teacher/classes/new", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	PageGuard(models.RoleTeacher)(c)
	return w
}

func TestPageGuardAnonymousRedirectsToLogin(t *testing.T) {
	w := performPageGuard(t, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestPageGuardInsufficientRoleRedirectsToRoot(t *testing.T) {
	w := performPageGuard(t, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestPageGuardTeacherPasses(t *testing.T) {
	w := performPageGuard(t, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	assert.NotEqual(t, http.StatusFound, w.Code)
}

func TestPageGuardAdminPasses(t *testing.T) {
	w := performPageGuard(t, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	assert.NotEqual(t, http.StatusFound, w.Code)
}
