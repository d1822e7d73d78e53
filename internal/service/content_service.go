package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hero-academy/academy-api/internal/dto"
	"github.com/hero-academy/academy-api/internal/models"
	appErrors "github.com/hero-academy/academy-api/pkg/errors"
)

const (
	msgContentNotFound = "Materi tidak ditemukan"
	msgContentCreated  = "Materi berhasil ditambahkan"
	msgContentDeleted  = "Materi berhasil dihapus"
)

type contentRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.Content, error)
	FindByIDInClass(ctx context.Context, id, classID string) (*models.Content, error)
	Create(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id string) error
}

type attachmentStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

type classOwnershipResolver interface {
	GetOwned(ctx context.Context, id string, actor *models.JWTClaims) (*models.Class, error)
}

// ContentService manages learning materials under a class. Every operation
// resolves the parent class through the ownership filter first, so contents
// of somebody else's class are unreachable.
type ContentService struct {
	repo      contentRepository
	classes   classOwnershipResolver
	storage   attachmentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContentService constructs ContentService.
func NewContentService(repo contentRepository, classes classOwnershipResolver, storage attachmentStore, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{repo: repo, classes: classes, storage: storage, validator: validate, logger: logger}
}

// ContentMutationResult pairs an optional record with the echoed message.
type ContentMutationResult struct {
	Message string
	Content *models.Content
}

// ListByClass returns contents of a class the actor owns.
func (s *ContentService) ListByClass(ctx context.Context, classID string, actor *models.JWTClaims) ([]models.Content, error) {
	if _, err := s.classes.GetOwned(ctx, classID, actor); err != nil {
		return nil, err
	}
	contents, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	return contents, nil
}

// Create adds a content to an owned class. attachment may be nil; when
// present it is streamed into storage and its relative path recorded.
func (s *ContentService) Create(ctx context.Context, classID string, req dto.CreateContentRequest, attachment io.Reader, attachmentName string, actor *models.JWTClaims) (*ContentMutationResult, error) {
	if _, err := s.classes.GetOwned(ctx, classID, actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, fieldErrors(err))
	}

	content := &models.Content{
		ClassID: classID,
		Title:   req.Title,
		Body:    req.Body,
	}

	if attachment != nil {
		relPath := filepath.Join(classID, fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(attachmentName)))
		stored, err := s.storage.SaveStream(relPath, attachment)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
		}
		content.AttachmentPath = &stored
	}

	if err := s.repo.Create(ctx, content); err != nil {
		if content.AttachmentPath != nil {
			if cleanupErr := s.storage.Delete(*content.AttachmentPath); cleanupErr != nil {
				s.logger.Warn("failed to clean up orphaned attachment", zap.Error(cleanupErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	return &ContentMutationResult{Message: msgContentCreated, Content: content}, nil
}

// Delete removes a content from an owned class, including any stored
// attachment. The content lookup is scoped to the class so a contentId
// belonging to another class reads as not found.
func (s *ContentService) Delete(ctx context.Context, classID, contentID string, actor *models.JWTClaims) (*ContentMutationResult, error) {
	if _, err := s.classes.GetOwned(ctx, classID, actor); err != nil {
		return nil, err
	}

	content, err := s.repo.FindByIDInClass(ctx, contentID, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgContentNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	if err := s.repo.Delete(ctx, content.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	if content.AttachmentPath != nil {
		if err := s.storage.Delete(*content.AttachmentPath); err != nil {
			s.logger.Warn("failed to delete content attachment", zap.String("path", *content.AttachmentPath), zap.Error(err))
		}
	}

	return &ContentMutationResult{Message: msgContentDeleted}, nil
}
