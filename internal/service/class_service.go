package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hero-academy/academy-api/internal/dto"
	"github.com/hero-academy/academy-api/internal/models"
	appErrors "github.com/hero-academy/academy-api/pkg/errors"
)

const (
	msgClassNotFound = "Kelas tidak ditemukan"
	msgClassApproved = "Kelas berhasil disetujui"
	msgClassRejected = "Kelas berhasil ditolak"
	msgClassArchived = "Kelas berhasil diarsipkan"
	msgClassActived  = "Kelas berhasil diaktifkan"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindByIDForTeacher(ctx context.Context, id, teacherID string) (*models.Class, error)
	FindDetailByID(ctx context.Context, id string) (*models.ClassDetail, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	UpdateApprovalStatus(ctx context.Context, id string, status models.ClassApprovalStatus) error
	UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error
	CountContents(ctx context.Context, classID string) (int, error)
}

// ClassService coordinates the class lifecycle: creation and editing by the
// owning teacher, approval by admins, archiving by the owner.
type ClassService struct {
	repo               classRepository
	cache              *CacheService
	validator          *validator.Validate
	logger             *zap.Logger
	adminArchiveBypass bool
}

// NewClassService constructs ClassService. adminArchiveBypass selects the
// archive lookup path for ADMIN actors (see SetStatus).
func NewClassService(repo classRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, adminArchiveBypass bool) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, cache: cache, validator: validate, logger: logger, adminArchiveBypass: adminArchiveBypass}
}

// ClassMutationResult pairs the updated record with the human message echoed
// to the caller.
type ClassMutationResult struct {
	Message string
	Class   *models.Class
}

// List returns classes with pagination metadata. Teacher actors are always
// scoped to their own classes; admins see everything.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter, actor *models.JWTClaims) ([]models.Class, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		filter.TeacherID = actor.UserID
	}

	cacheKey := classListCacheKey(filter)
	type cachedList struct {
		Classes    []models.Class     `json:"classes"`
		Pagination *models.Pagination `json:"pagination"`
	}
	if s.cache.Enabled() {
		var cached cachedList
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached.Classes, cached.Pagination, nil
		}
	}

	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, cachedList{Classes: classes, Pagination: pagination}, 0); err != nil {
			s.logger.Warn("failed to cache class list", zap.Error(err))
		}
	}
	return classes, pagination, nil
}

// Get returns detailed class information without ownership scoping.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	count, err := s.repo.CountContents(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	detail.ContentCount = count
	return detail, nil
}

// GetOwned returns the class scoped to the acting teacher. Admin actors see
// any class. Used by the page loaders guarding edit/content pages.
func (s *ClassService) GetOwned(ctx context.Context, id string, actor *models.JWTClaims) (*models.Class, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return s.lookupForActor(ctx, id, actor, true)
}

// Create adds a new class owned by the acting teacher, starting active and
// pending approval.
func (s *ClassService) Create(ctx context.Context, req dto.CreateClassRequest, actor *models.JWTClaims) (*models.Class, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, fieldErrors(err))
	}

	class := &models.Class{
		Title:          req.Title,
		Description:    req.Description,
		TeacherID:      actor.UserID,
		Status:         models.ClassStatusActive,
		ApprovalStatus: models.ApprovalPending,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	s.invalidateListCache(ctx)
	return class, nil
}

// Update modifies a class owned by the acting teacher.
func (s *ClassService) Update(ctx context.Context, id string, req dto.UpdateClassRequest, actor *models.JWTClaims) (*models.Class, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, fieldErrors(err))
	}

	class, err := s.lookupForActor(ctx, id, actor, true)
	if err != nil {
		return nil, err
	}

	class.Title = req.Title
	class.Description = req.Description

	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	s.invalidateListCache(ctx)
	return class, nil
}

// Approve marks the class as approved. Admin-only at the route gate; the
// lookup is global because approval acts across all teachers. Approving an
// already approved class is a no-op transition, not an error.
func (s *ClassService) Approve(ctx context.Context, id string) (*ClassMutationResult, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	if err := s.repo.UpdateApprovalStatus(ctx, class.ID, models.ApprovalApproved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	class.ApprovalStatus = models.ApprovalApproved
	s.invalidateListCache(ctx)
	return &ClassMutationResult{Message: msgClassApproved, Class: class}, nil
}

// Reject marks the class as rejected, mirroring Approve.
func (s *ClassService) Reject(ctx context.Context, id string) (*ClassMutationResult, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	if err := s.repo.UpdateApprovalStatus(ctx, class.ID, models.ApprovalRejected); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	class.ApprovalStatus = models.ApprovalRejected
	s.invalidateListCache(ctx)
	return &ClassMutationResult{Message: msgClassRejected, Class: class}, nil
}

// SetStatus archives or activates a class. The lookup is scoped to
// id AND teacher_id for every actor by default, so a class owned by another
// teacher is indistinguishable from a nonexistent one. With the
// admin-archive-bypass flag on, ADMIN actors use the unscoped lookup instead.
// Both paths are explicit; which one applies is decided once, here.
func (s *ClassService) SetStatus(ctx context.Context, id string, req dto.ArchiveClassRequest, actor *models.JWTClaims) (*ClassMutationResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, fieldErrors(err))
	}

	class, err := s.lookupForActor(ctx, id, actor, s.adminArchiveBypass)
	if err != nil {
		return nil, err
	}

	target := models.ClassStatus(req.Status)
	if err := s.repo.UpdateStatus(ctx, class.ID, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	class.Status = target
	s.invalidateListCache(ctx)

	message := msgClassActived
	if target == models.ClassStatusArchived {
		message = msgClassArchived
	}
	return &ClassMutationResult{Message: message, Class: class}, nil
}

// lookupForActor fetches the class either owner-scoped or globally. The
// global path is taken only for ADMIN actors and only when allowAdminGlobal
// is set; everything else goes through the ownership filter.
func (s *ClassService) lookupForActor(ctx context.Context, id string, actor *models.JWTClaims, allowAdminGlobal bool) (*models.Class, error) {
	var (
		class *models.Class
		err   error
	)
	if allowAdminGlobal && actor.Role == models.RoleAdmin {
		class, err = s.repo.FindByID(ctx, id)
	} else {
		class, err = s.repo.FindByIDForTeacher(ctx, id, actor.UserID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	return class, nil
}

func (s *ClassService) invalidateListCache(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, "classes:list:*"); err != nil {
		s.logger.Warn("failed to invalidate class list cache", zap.Error(err))
	}
}

func classListCacheKey(filter models.ClassFilter) string {
	return fmt.Sprintf("classes:list:%s:%s:%s:%s:%d:%d:%s:%s",
		filter.TeacherID, filter.Status, filter.ApprovalStatus, filter.Search,
		filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
}
