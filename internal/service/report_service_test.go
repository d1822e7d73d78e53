package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hero-academy/academy-api/internal/dto"
	"github.com/hero-academy/academy-api/internal/models"
	"github.com/hero-academy/academy-api/internal/repository"
	appErrors "github.com/hero-academy/academy-api/pkg/errors"
	"github.com/hero-academy/academy-api/pkg/jobs"
	"github.com/hero-academy/academy-api/pkg/storage"
)

type reportRepoStub struct {
	jobs map[string]*models.ReportJob
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (s *reportRepoStub) Create(ctx context.Context, job *models.ReportJob) error {
	s.jobs[job.ID] = job
	return nil
}

func (s *reportRepoStub) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	if job, ok := s.jobs[id]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *reportRepoStub) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	job := s.jobs[id]
	if params.Status != "" {
		job.Status = params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

type queueStub struct {
	enqueued []jobs.Job
}

func (s *queueStub) Enqueue(job jobs.Job) error {
	s.enqueued = append(s.enqueued, job)
	return nil
}

func newReportFixture(t *testing.T) (*ReportService, *reportRepoStub, *queueStub) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("report-secret", time.Hour)

	repo := newReportRepoStub()
	classes := newClassRepoStub(ownedClass())
	contents := newContentRepoStub(&models.Content{ID: "content-1", ClassID: "class-1", Title: "Pertemuan 1"})

	svc := NewReportService(repo, classes, contents, store, signer, nil, nil)
	queue := &queueStub{}
	svc.BindQueue(queue)
	return svc, repo, queue
}

func TestReportServiceEnqueueScopesTeacher(t *testing.T) {
	svc, repo, queue := newReportFixture(t)

	res, err := svc.Enqueue(context.Background(), dto.ReportRequest{Type: models.ReportTypeClasses, Format: models.ReportFormatCSV}, teacherClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, res.Status)
	require.Len(t, queue.enqueued, 1)

	job := repo.jobs[res.ID]
	require.NotNil(t, job.Params.TeacherID)
	assert.Equal(t, "teacher-1", *job.Params.TeacherID)
}

func TestReportServiceEnqueueValidation(t *testing.T) {
	svc, _, _ := newReportFixture(t)

	_, err := svc.Enqueue(context.Background(), dto.ReportRequest{Type: "grades", Format: models.ReportFormatCSV}, teacherClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.NotNil(t, appErr.Details)
}

func TestReportServiceProcessClassesCSV(t *testing.T) {
	svc, repo, _ := newReportFixture(t)

	res, err := svc.Enqueue(context.Background(), dto.ReportRequest{Type: models.ReportTypeClasses, Format: models.ReportFormatCSV}, teacherClaims())
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), jobs.Job{ID: res.ID}))

	job := repo.jobs[res.ID]
	assert.Equal(t, models.ReportStatusFinished, job.Status)
	require.NotNil(t, job.FinishedAt)
	require.NotNil(t, job.ResultURL)
	token := strings.TrimPrefix(*job.ResultURL, "/api/reports/download?token=")

	file, name, err := svc.Download(token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, res.ID+".csv", name)
}

func TestReportServiceProcessContentsPDF(t *testing.T) {
	svc, repo, _ := newReportFixture(t)

	res, err := svc.Enqueue(context.Background(), dto.ReportRequest{Type: models.ReportTypeContents, Format: models.ReportFormatPDF}, teacherClaims())
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), jobs.Job{ID: res.ID}))
	assert.Equal(t, models.ReportStatusFinished, repo.jobs[res.ID].Status)
}

func TestReportServiceStatusHiddenFromOtherTeacher(t *testing.T) {
	svc, _, _ := newReportFixture(t)

	res, err := svc.Enqueue(context.Background(), dto.ReportRequest{Type: models.ReportTypeClasses, Format: models.ReportFormatCSV}, teacherClaims())
	require.NoError(t, err)

	other := &models.JWTClaims{UserID: "teacher-2", Role: models.RoleTeacher}
	_, err = svc.Status(context.Background(), res.ID, other)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)

	status, err := svc.Status(context.Background(), res.ID, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, status.Status)
}

func TestReportServiceDownloadBadToken(t *testing.T) {
	svc, _, _ := newReportFixture(t)

	_, _, err := svc.Download("tampered-token")
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
}
