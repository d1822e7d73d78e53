package dto

import "github.com/hero-academy/academy-api/internal/models"

// ReportRequest captures the class report export payload.
type ReportRequest struct {
	Type           models.ReportType   `json:"type" validate:"required,oneof=classes contents"`
	Format         models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	TeacherID      *string             `json:"teacher_id,omitempty"`
	ApprovalStatus *string             `json:"approval_status,omitempty" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ReportStatus `json:"status"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
