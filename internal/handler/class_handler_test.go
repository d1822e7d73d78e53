package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hero-academy/academy-api/internal/middleware"
	"github.com/hero-academy/academy-api/internal/models"
	"github.com/hero-academy/academy-api/internal/service"
)

type classRepoStub struct {
	classes map[string]*models.Class
}

func newClassRepoStub(classes ...*models.Class) *classRepoStub {
	stub := &classRepoStub{classes: map[string]*models.Class{}}
	for _, c := range classes {
		stub.classes[c.ID] = c
	}
	return stub
}

func (s *classRepoStub) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	var out []models.Class
	for _, c := range s.classes {
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (s *classRepoStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := s.classes[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *classRepoStub) FindByIDForTeacher(ctx context.Context, id, teacherID string) (*models.Class, error) {
	if c, ok := s.classes[id]; ok && c.TeacherID == teacherID {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *classRepoStub) FindDetailByID(ctx context.Context, id string) (*models.ClassDetail, error) {
	if c, ok := s.classes[id]; ok {
		return &models.ClassDetail{Class: *c, TeacherName: "Guru"}, nil
	}
	return nil, sql.ErrNoRows
}

func (s *classRepoStub) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = "generated"
	}
	s.classes[class.ID] = class
	return nil
}

func (s *classRepoStub) Update(ctx context.Context, class *models.Class) error {
	s.classes[class.ID] = class
	return nil
}

func (s *classRepoStub) UpdateApprovalStatus(ctx context.Context, id string, status models.ClassApprovalStatus) error {
	s.classes[id].ApprovalStatus = status
	return nil
}

func (s *classRepoStub) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error {
	s.classes[id].Status = status
	return nil
}

func (s *classRepoStub) CountContents(ctx context.Context, classID string) (int, error) {
	return 0, nil
}

func fixtureClass() *models.Class {
	return &models.Class{
		ID:             "class-1",
		Title:          "Matematika",
		TeacherID:      "teacher-1",
		Status:         models.ClassStatusActive,
		ApprovalStatus: models.ApprovalPending,
	}
}

func newClassHandlerFixture(classes ...*models.Class) *ClassHandler {
	svc := service.NewClassService(newClassRepoStub(classes...), nil, nil, nil, false)
	return NewClassHandler(svc)
}

func performJSON(t *testing.T, method, target string, body string, claims *models.JWTClaims, params gin.Params, fn gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	c.Params = params
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	fn(c)
	return w
}

func TestClassHandlerArchive(t *testing.T) {
	handler := newClassHandlerFixture(fixtureClass())
	claims := &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}

	w := performJSON(t, http.MethodPost, "/api/teacher/classes/class-1/archive", `{"status":"ARCHIVED"}`, claims,
		gin.Params{{Key: "id", Value: "class-1"}}, handler.Archive)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Kelas berhasil diarsipkan", body["message"])
	class, ok := body["class"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ARCHIVED", class["status"])
}

func TestClassHandlerArchiveReactivate(t *testing.T) {
	archived := fixtureClass()
	archived.Status = models.ClassStatusArchived
	handler := newClassHandlerFixture(archived)
	claims := &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}

	w := performJSON(t, http.MethodPost, "/api/teacher/classes/class-1/archive", `{"status":"ACTIVE"}`, claims,
		gin.Params{{Key: "id", Value: "class-1"}}, handler.Archive)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Kelas berhasil diaktifkan", body["message"])
}

func TestClassHandlerArchiveNotOwnerReadsAsNotFound(t *testing.T) {
	handler := newClassHandlerFixture(fixtureClass())
	claims := &models.JWTClaims{UserID: "teacher-2", Role: models.RoleTeacher}

	w := performJSON(t, http.MethodPost, "/api/teacher/classes/class-1/archive", `{"status":"ARCHIVED"}`, claims,
		gin.Params{{Key: "id", Value: "class-1"}}, handler.Archive)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Kelas tidak ditemukan", body["error"])
}

func TestClassHandlerArchiveNonexistentSameBody(t *testing.T) {
	handler := newClassHandlerFixture(fixtureClass())
	claims := &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}

	w := performJSON(t, http.MethodPost, "/api/teacher/classes/missing/archive", `{"status":"ARCHIVED"}`, claims,
		gin.Params{{Key: "id", Value: "missing"}}, handler.Archive)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Kelas tidak ditemukan", body["error"])
}

func TestClassHandlerArchiveInvalidStatus(t *testing.T) {
	handler := newClassHandlerFixture(fixtureClass())
	claims := &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}

	w := performJSON(t, http.MethodPost, "/api/teacher/classes/class-1/archive", `{"status":"PAUSED"}`, claims,
		gin.Params{{Key: "id", Value: "class-1"}}, handler.Archive)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Data tidak valid", body["error"])
	assert.NotNil(t, body["details"])
}

func TestClassHandlerArchiveWithoutClaims(t *testing.T) {
	handler := newClassHandlerFixture(fixtureClass())

	w := performJSON(t, http.MethodPost, "/api/teacher/classes/class-1/archive", `{"status":"ARCHIVED"}`, nil,
		gin.Params{{Key: "id", Value: "class-1"}}, handler.Archive)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestClassHandlerApprove(t *testing.T) {
	handler := newClassHandlerFixture(fixtureClass())

	w := performJSON(t, http.MethodPost, "/api/admin/classes/class-1/approve", "", nil,
		gin.Params{{Key: "id", Value: "class-1"}}, handler.Approve)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Kelas berhasil disetujui", body["message"])
	class := body["class"].(map[string]interface{})
	assert.Equal(t, "APPROVED", class["approval_status"])
}

func TestClassHandlerApproveRepeated(t *testing.T) {
	approved := fixtureClass()
	approved.ApprovalStatus = models.ApprovalApproved
	handler := newClassHandlerFixture(approved)

	w := performJSON(t, http.MethodPost, "/api/admin/classes/class-1/approve", "", nil,
		gin.Params{{Key: "id", Value: "class-1"}}, handler.Approve)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Kelas berhasil disetujui", body["message"])
}

func TestClassHandlerApproveNotFound(t *testing.T) {
	handler := newClassHandlerFixture()

	w := performJSON(t, http.MethodPost, "/api/admin/classes/missing/approve", "", nil,
		gin.Params{{Key: "id", Value: "missing"}}, handler.Approve)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Kelas tidak ditemukan", body["error"])
}

func TestClassHandlerListScoped(t *testing.T) {
	other := fixtureClass()
	other.ID = "class-2"
	other.TeacherID = "teacher-2"
	handler := newClassHandlerFixture(fixtureClass(), other)
	claims := &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}

	w := performJSON(t, http.MethodGet, "/api/teacher/classes", "", claims, nil, handler.List)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []models.Class `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "teacher-1", body.Data[0].TeacherID)
}
