package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hero-academy/academy-api/internal/models"
)

// ContentRepository manages persistence for class contents.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs a new content repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListByClass returns all contents of a class ordered by creation time.
func (r *ContentRepository) ListByClass(ctx context.Context, classID string) ([]models.Content, error) {
	const query = `SELECT id, class_id, title, body, attachment_path, created_at, updated_at FROM contents WHERE class_id = $1 ORDER BY created_at ASC`
	var contents []models.Content
	if err := r.db.SelectContext(ctx, &contents, query, classID); err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	return contents, nil
}

// FindByIDInClass returns a content scoped to its parent class. A content
// belonging to another class yields sql.ErrNoRows.
func (r *ContentRepository) FindByIDInClass(ctx context.Context, id, classID string) (*models.Content, error) {
	const query = `SELECT id, class_id, title, body, attachment_path, created_at, updated_at FROM contents WHERE id = $1 AND class_id = $2`
	var content models.Content
	if err := r.db.GetContext(ctx, &content, query, id, classID); err != nil {
		return nil, err
	}
	return &content, nil
}

// Create persists a content record.
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	content.UpdatedAt = now

	const query = `INSERT INTO contents (id, class_id, title, body, attachment_path, created_at, updated_at) VALUES (:id, :class_id, :title, :body, :attachment_path, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, content); err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

// Delete removes a content record.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}
