package models

import "time"

// Content is a learning material attached to a class. Ownership is
// transitive: whoever owns the parent class owns the content.
type Content struct {
	ID             string    `db:"id" json:"id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	Title          string    `db:"title" json:"title"`
	Body           string    `db:"body" json:"body"`
	AttachmentPath *string   `db:"attachment_path" json:"attachment_path,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
