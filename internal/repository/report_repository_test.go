package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hero-academy/academy-api/internal/models"
)

func newReportRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReportRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_jobs")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := &models.ReportJob{Type: models.ReportTypeClasses, CreatedBy: "admin-1"}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdateStatusOnly(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1 WHERE id = $2")).
		WithArgs(models.ReportStatusProcessing, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{Status: models.ReportStatusProcessing})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdateFinished(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	url := "/api/reports/download?token=abc"
	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1, result_url = $2, finished_at = $3 WHERE id = $4")).
		WithArgs(models.ReportStatusFinished, url, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{
		Status:     models.ReportStatusFinished,
		ResultURL:  &url,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdateNoFieldsIsNoop(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
