package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hero-academy/academy-api/internal/dto"
	"github.com/hero-academy/academy-api/internal/service"
	appErrors "github.com/hero-academy/academy-api/pkg/errors"
	"github.com/hero-academy/academy-api/pkg/response"
)

// ContentHandler exposes class content endpoints.
type ContentHandler struct {
	service            *service.ContentService
	maxAttachmentBytes int64
}

// NewContentHandler constructs a content handler.
func NewContentHandler(svc *service.ContentService, maxAttachmentBytes int64) *ContentHandler {
	return &ContentHandler{service: svc, maxAttachmentBytes: maxAttachmentBytes}
}

// List godoc
// @Summary List contents of an owned class
// @Tags Contents
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /teacher/classes/{id}/contents [get]
func (h *ContentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	contents, err := h.service.ListByClass(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, contents, nil)
}

// Create godoc
// @Summary Add a content to an owned class
// @Description Accepts JSON, or multipart form data with an optional attachment file.
// @Tags Contents
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /teacher/classes/{id}/contents [post]
func (h *ContentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateContentRequest
	if c.ContentType() == "application/json" {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.ErrValidation)
			return
		}
		result, err := h.service.Create(c.Request.Context(), c.Param("id"), req, nil, "", claims)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Mutation(c, result.Message, "content", result.Content)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.ErrValidation)
		return
	}

	fileHeader, err := c.FormFile("attachment")
	if err != nil && err != http.ErrMissingFile {
		response.Error(c, appErrors.ErrValidation)
		return
	}

	if fileHeader == nil {
		result, err := h.service.Create(c.Request.Context(), c.Param("id"), req, nil, "", claims)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Mutation(c, result.Message, "content", result.Content)
		return
	}

	if h.maxAttachmentBytes > 0 && fileHeader.Size > h.maxAttachmentBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Lampiran terlalu besar"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	defer file.Close()

	result, err := h.service.Create(c.Request.Context(), c.Param("id"), req, file, fileHeader.Filename, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Mutation(c, result.Message, "content", result.Content)
}

// Delete godoc
// @Summary Delete a content from an owned class
// @Tags Contents
// @Produce json
// @Param id path string true "Class ID"
// @Param contentId path string true "Content ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorBody
// @Router /teacher/classes/{id}/contents/{contentId} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Param("contentId"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Mutation(c, result.Message, "", nil)
}
