package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hero-academy/academy-api/internal/dto"
	"github.com/hero-academy/academy-api/internal/models"
	appErrors "github.com/hero-academy/academy-api/pkg/errors"
)

type contentRepoStub struct {
	contents map[string]*models.Content
	deleted  []string
}

func newContentRepoStub(contents ...*models.Content) *contentRepoStub {
	stub := &contentRepoStub{contents: map[string]*models.Content{}}
	for _, c := range contents {
		stub.contents[c.ID] = c
	}
	return stub
}

func (s *contentRepoStub) ListByClass(ctx context.Context, classID string) ([]models.Content, error) {
	var out []models.Content
	for _, c := range s.contents {
		if c.ClassID == classID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *contentRepoStub) FindByIDInClass(ctx context.Context, id, classID string) (*models.Content, error) {
	if c, ok := s.contents[id]; ok && c.ClassID == classID {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *contentRepoStub) Create(ctx context.Context, content *models.Content) error {
	if content.ID == "" {
		content.ID = "content-generated"
	}
	s.contents[content.ID] = content
	return nil
}

func (s *contentRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.contents, id)
	return nil
}

type storageStub struct {
	saved   map[string]string
	deleted []string
}

func newStorageStub() *storageStub {
	return &storageStub{saved: map[string]string{}}
}

func (s *storageStub) SaveStream(filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.saved[filename] = string(data)
	return filename, nil
}

func (s *storageStub) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

func newContentFixture(t *testing.T, contents ...*models.Content) (*ContentService, *contentRepoStub, *storageStub) {
	t.Helper()
	repo := newContentRepoStub(contents...)
	store := newStorageStub()
	classes := NewClassService(newClassRepoStub(ownedClass()), nil, nil, nil, false)
	return NewContentService(repo, classes, store, nil, nil), repo, store
}

func TestContentServiceCreate(t *testing.T) {
	svc, repo, _ := newContentFixture(t)

	result, err := svc.Create(context.Background(), "class-1", dto.CreateContentRequest{Title: "Pertemuan 1", Body: "Materi"}, nil, "", teacherClaims())
	require.NoError(t, err)
	assert.Equal(t, "Materi berhasil ditambahkan", result.Message)
	assert.Len(t, repo.contents, 1)
	assert.Nil(t, result.Content.AttachmentPath)
}

func TestContentServiceCreateWithAttachment(t *testing.T) {
	svc, _, store := newContentFixture(t)

	result, err := svc.Create(context.Background(), "class-1", dto.CreateContentRequest{Title: "Pertemuan 1", Body: "Materi"}, strings.NewReader("isi file"), "modul.pdf", teacherClaims())
	require.NoError(t, err)
	require.NotNil(t, result.Content.AttachmentPath)
	assert.Contains(t, *result.Content.AttachmentPath, "class-1")
	assert.Len(t, store.saved, 1)
}

func TestContentServiceCreateUnownedClass(t *testing.T) {
	svc, _, _ := newContentFixture(t)

	other := &models.JWTClaims{UserID: "teacher-2", Role: models.RoleTeacher}
	_, err := svc.Create(context.Background(), "class-1", dto.CreateContentRequest{Title: "Pertemuan 1", Body: "Materi"}, nil, "", other)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Kelas tidak ditemukan", appErr.Message)
}

func TestContentServiceDelete(t *testing.T) {
	path := "class-1/file.pdf"
	svc, repo, store := newContentFixture(t, &models.Content{ID: "content-1", ClassID: "class-1", AttachmentPath: &path})

	result, err := svc.Delete(context.Background(), "class-1", "content-1", teacherClaims())
	require.NoError(t, err)
	assert.Equal(t, "Materi berhasil dihapus", result.Message)
	assert.Equal(t, []string{"content-1"}, repo.deleted)
	assert.Equal(t, []string{path}, store.deleted)
}

func TestContentServiceDeleteWrongClassReadsAsNotFound(t *testing.T) {
	svc, _, _ := newContentFixture(t, &models.Content{ID: "content-1", ClassID: "other-class"})

	_, err := svc.Delete(context.Background(), "class-1", "content-1", teacherClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Materi tidak ditemukan", appErr.Message)
}

func TestContentServiceListUnownedClass(t *testing.T) {
	svc, _, _ := newContentFixture(t)

	other := &models.JWTClaims{UserID: "teacher-2", Role: models.RoleTeacher}
	_, err := svc.ListByClass(context.Background(), "class-1", other)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
}
