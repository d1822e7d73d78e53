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

func newContentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestContentRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newContentRepoMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "title", "body", "attachment_path", "created_at", "updated_at"}).
		AddRow("content-1", "class-1", "Pertemuan 1", "Materi pembuka", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, title, body, attachment_path, created_at, updated_at FROM contents WHERE class_id = $1 ORDER BY created_at ASC")).
		WithArgs("class-1").
		WillReturnRows(rows)

	contents, err := repo.ListByClass(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Len(t, contents, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepositoryFindByIDInClassScoped(t *testing.T) {
	db, mock, cleanup := newContentRepoMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND class_id = $2")).
		WithArgs("content-1", "other-class").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByIDInClass(context.Background(), "content-1", "other-class")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newContentRepoMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec("INSERT INTO contents").
		WithArgs(sqlmock.AnyArg(), "class-1", "Pertemuan 1", "Materi pembuka", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	content := &models.Content{ClassID: "class-1", Title: "Pertemuan 1", Body: "Materi pembuka"}
	require.NoError(t, repo.Create(context.Background(), content))
	assert.NotEmpty(t, content.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contents WHERE id = $1")).
		WithArgs(content.ID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Delete(context.Background(), content.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
