package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hero-academy/academy-api/internal/models"
)

func performWithRole(t *testing.T, required models.UserRole, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/protected", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	RequireRole(required)(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return w
}

func TestRequireRoleMissingClaims(t *testing.T) {
	w := performWithRole(t, models.RoleTeacher, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestRequireRoleInsufficientRoleAnswersUnauthorized(t *testing.T) {
	claims := &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}
	w := performWithRole(t, models.RoleAdmin, claims)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Body must be identical to the missing-token case.
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["error"])
	assert.NotContains(t, body, "details")
}

func TestRequireRoleAdminPassesTeacherGate(t *testing.T) {
	claims := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	w := performWithRole(t, models.RoleTeacher, claims)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleExactMatch(t *testing.T) {
	claims := &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}
	w := performWithRole(t, models.RoleTeacher, claims)
	require.Equal(t, http.StatusOK, w.Code)
}
