package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hero-academy/academy-api/internal/service"
	appErrors "github.com/hero-academy/academy-api/pkg/errors"
	"github.com/hero-academy/academy-api/pkg/response"
)

// PageHandler serves data loaders for server-rendered teacher pages. Role
// redirects happen in the page guard middleware; the handlers only resolve
// the data the page needs, answering 404 when the class is not owned.
type PageHandler struct {
	classes  *service.ClassService
	contents *service.ContentService
}

// NewPageHandler constructs a page data handler.
func NewPageHandler(classes *service.ClassService, contents *service.ContentService) *PageHandler {
	return &PageHandler{classes: classes, contents: contents}
}

// NewClass loads data for the class creation page. The page has no backing
// record, so a guarded empty payload is enough.
func (h *PageHandler) NewClass(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{}, nil)
}

// EditClass loads the owned class backing the edit page.
func (h *PageHandler) EditClass(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	class, err := h.classes.GetOwned(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, class, nil)
}

// NewContent loads the owned class backing the content creation page.
func (h *PageHandler) NewContent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	class, err := h.classes.GetOwned(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	contents, err := h.contents.ListByClass(c.Request.Context(), class.ID, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"class": class, "contents": contents}, nil)
}
