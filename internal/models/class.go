package models

import "time"

// ClassStatus is the activity state of a class. Archiving is a soft
// deactivation, never a delete.
type ClassStatus string

const (
	ClassStatusActive   ClassStatus = "ACTIVE"
	ClassStatusArchived ClassStatus = "ARCHIVED"
)

// ClassApprovalStatus is the admin approval workflow state, independent of
// the activity status. Only approved classes are visible to students.
type ClassApprovalStatus string

const (
	ApprovalPending  ClassApprovalStatus = "PENDING"
	ApprovalApproved ClassApprovalStatus = "APPROVED"
	ApprovalRejected ClassApprovalStatus = "REJECTED"
)

// Class represents a course owned by exactly one teacher.
type Class struct {
	ID             string              `db:"id" json:"id"`
	Title          string              `db:"title" json:"title"`
	Description    string              `db:"description" json:"description"`
	TeacherID      string              `db:"teacher_id" json:"teacher_id"`
	Status         ClassStatus         `db:"status" json:"status"`
	ApprovalStatus ClassApprovalStatus `db:"approval_status" json:"approval_status"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with the owning teacher's name for detail views.
type ClassDetail struct {
	Class
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
	ContentCount int    `db:"-" json:"content_count"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	TeacherID      string
	Status         string
	ApprovalStatus string
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
