package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hero-academy/academy-api/internal/models"
	appErrors "github.com/hero-academy/academy-api/pkg/errors"
)

// Envelope is the body shape for list/detail responses.
type Envelope struct {
	Data       interface{}        `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// ErrorBody is the uniform failure shape: a human message plus optional
// field-level details. It deliberately exposes nothing else about the cause.
type ErrorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Data: data, Pagination: pagination})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Mutation responds 200 with a flat body of the form
// {"message": ..., "<entityKey>": record}. When entityKey is empty only the
// message is sent.
func Mutation(c *gin.Context, message, entityKey string, record interface{}) {
	body := gin.H{"message": message}
	if entityKey != "" {
		body[entityKey] = record
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, body)
}

// Error converts any error into the uniform {"error": ..., "details": ...}
// body using the shared taxonomy. Every handler failure goes through here.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, ErrorBody{Error: appErr.Message, Details: appErr.Details})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
