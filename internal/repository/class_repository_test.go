package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hero-academy/academy-api/internal/models"
)

func newClassRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func classRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "teacher_id", "status", "approval_status", "created_at", "updated_at"}).
		AddRow("class-1", "Matematika", "Kelas matematika dasar", "teacher-1", "ACTIVE", "PENDING", time.Now(), time.Now())
}

func TestClassRepositoryListWithTeacherFilter(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, teacher_id, status, approval_status, created_at, updated_at FROM classes WHERE 1=1 AND teacher_id = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("teacher-1").
		WillReturnRows(classRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE 1=1 AND teacher_id = $1")).
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{TeacherID: "teacher-1"})
	require.NoError(t, err)
	assert.Len(t, classes, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).WillReturnRows(classRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.ClassFilter{SortBy: "teacher_id; DROP TABLE classes"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindByIDForTeacher(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, teacher_id, status, approval_status, created_at, updated_at FROM classes WHERE id = $1 AND teacher_id = $2")).
		WithArgs("class-1", "teacher-1").
		WillReturnRows(classRows())

	class, err := repo.FindByIDForTeacher(context.Background(), "class-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", class.TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindByIDForTeacherOtherOwner(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND teacher_id = $2")).
		WithArgs("class-1", "teacher-2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByIDForTeacher(context.Background(), "class-1", "teacher-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").
		WithArgs(sqlmock.AnyArg(), "Matematika", "Deskripsi", "teacher-1", "ACTIVE", "PENDING", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	class := &models.Class{
		Title:          "Matematika",
		Description:    "Deskripsi",
		TeacherID:      "teacher-1",
		Status:         models.ClassStatusActive,
		ApprovalStatus: models.ApprovalPending,
	}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.NotEmpty(t, class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("class-1", models.ClassStatusArchived, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "class-1", models.ClassStatusArchived))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdateApprovalStatus(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET approval_status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("class-1", models.ApprovalApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateApprovalStatus(context.Background(), "class-1", models.ApprovalApproved))
	assert.NoError(t, mock.ExpectationsWereMet())
}
