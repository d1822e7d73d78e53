package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hero-academy/academy-api/internal/dto"
	"github.com/hero-academy/academy-api/internal/models"
	"github.com/hero-academy/academy-api/internal/repository"
	appErrors "github.com/hero-academy/academy-api/pkg/errors"
	"github.com/hero-academy/academy-api/pkg/export"
	"github.com/hero-academy/academy-api/pkg/jobs"
	"github.com/hero-academy/academy-api/pkg/storage"
)

const (
	msgReportNotFound = "Laporan tidak ditemukan"

	downloadPath   = "/api/reports/download?token="
	reportPageSize = 1000
)

type reportJobRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
}

type reportClassSource interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
}

type reportContentSource interface {
	ListByClass(ctx context.Context, classID string) ([]models.Content, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ReportService produces CSV and PDF exports of classes and contents as
// background jobs. Results land in local storage and are handed out through
// short-lived signed URLs.
type ReportService struct {
	repo      reportJobRepository
	classes   reportClassSource
	contents  reportContentSource
	queue     jobEnqueuer
	storage   *storage.LocalStorage
	signer    *storage.SignedURLSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs ReportService. The queue is bound separately
// because the queue handler is the service's own Process method.
func NewReportService(repo reportJobRepository, classes reportClassSource, contents reportContentSource, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:      repo,
		classes:   classes,
		contents:  contents,
		storage:   store,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// BindQueue attaches the worker queue once it has been built around Process.
func (s *ReportService) BindQueue(q jobEnqueuer) {
	s.queue = q
}

// Enqueue validates the request, persists the job record and pushes it onto
// the worker queue.
func (s *ReportService) Enqueue(ctx context.Context, req dto.ReportRequest, actor *models.JWTClaims) (*dto.ReportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, fieldErrors(err))
	}

	params := models.ReportJobParams{
		TeacherID:      req.TeacherID,
		ApprovalStatus: req.ApprovalStatus,
		Format:         req.Format,
	}
	// Teachers only ever export their own data.
	if actor.Role != models.RoleAdmin {
		teacherID := actor.UserID
		params.TeacherID = &teacherID
	}

	job := &models.ReportJob{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Params:    params,
		Status:    models.ReportStatusQueued,
		CreatedBy: actor.UserID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		s.markFailed(ctx, job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// Status returns job progress for the creator, or any job for admins.
func (s *ReportService) Status(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ReportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgReportNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	if actor.Role != models.RoleAdmin && job.CreatedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, msgReportNotFound)
	}
	return &dto.ReportStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}, nil
}

// Download resolves a signed token into the stored file.
func (s *ReportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, msgReportNotFound)
	}
	f, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, msgReportNotFound)
	}
	return f, filepath.Base(relPath), nil
}

// Process is the queue handler. It renders the dataset and stores the result.
func (s *ReportService) Process(ctx context.Context, qj jobs.Job) error {
	job, err := s.repo.GetByID(ctx, qj.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", qj.ID, err)
	}

	if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: models.ReportStatusProcessing}); err != nil {
		return fmt.Errorf("mark report job processing: %w", err)
	}

	data, err := s.buildDataset(ctx, job)
	if err != nil {
		s.markFailed(ctx, job.ID, err)
		return err
	}

	var rendered []byte
	switch job.Params.Format {
	case models.ReportFormatPDF:
		rendered, err = s.pdf.Render(data, fmt.Sprintf("Laporan %s", job.Type))
	default:
		rendered, err = s.csv.Render(data)
	}
	if err != nil {
		s.markFailed(ctx, job.ID, err)
		return err
	}

	relPath := filepath.Join("reports", fmt.Sprintf("%s.%s", job.ID, job.Params.Format))
	if _, err := s.storage.Save(relPath, rendered); err != nil {
		s.markFailed(ctx, job.ID, err)
		return err
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.markFailed(ctx, job.ID, err)
		return err
	}
	url := downloadPath + token

	now := time.Now()
	if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:     models.ReportStatusFinished,
		ResultURL:  &url,
		FinishedAt: &now,
	}); err != nil {
		return fmt.Errorf("finish report job: %w", err)
	}

	s.logger.Info("report job finished", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return nil
}

func (s *ReportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	filter := models.ClassFilter{Page: 1, PageSize: reportPageSize}
	if job.Params.TeacherID != nil {
		filter.TeacherID = *job.Params.TeacherID
	}
	if job.Params.ApprovalStatus != nil {
		filter.ApprovalStatus = *job.Params.ApprovalStatus
	}

	classes, _, err := s.classes.List(ctx, filter)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("list classes for report: %w", err)
	}

	switch job.Type {
	case models.ReportTypeContents:
		data := export.Dataset{Headers: []string{"Kelas", "Judul", "Dibuat"}}
		for _, class := range classes {
			contents, err := s.contents.ListByClass(ctx, class.ID)
			if err != nil {
				return export.Dataset{}, fmt.Errorf("list contents for report: %w", err)
			}
			for _, content := range contents {
				data.Rows = append(data.Rows, map[string]string{
					"Kelas":  class.Title,
					"Judul":  content.Title,
					"Dibuat": content.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
		}
		return data, nil
	default:
		data := export.Dataset{Headers: []string{"Judul", "Status", "Persetujuan", "Dibuat"}}
		for _, class := range classes {
			data.Rows = append(data.Rows, map[string]string{
				"Judul":       class.Title,
				"Status":      string(class.Status),
				"Persetujuan": string(class.ApprovalStatus),
				"Dibuat":      class.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		return data, nil
	}
}

func (s *ReportService) markFailed(ctx context.Context, id string, cause error) {
	msg := cause.Error()
	now := time.Now()
	if err := s.repo.Update(ctx, id, repository.UpdateReportJobParams{
		Status:       models.ReportStatusFailed,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Error("failed to mark report job failed", zap.String("job_id", id), zap.Error(err))
	}
}
