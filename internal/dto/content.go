package dto

// CreateContentRequest captures the content creation payload. The optional
// attachment arrives separately as a multipart file.
type CreateContentRequest struct {
	Title string `json:"title" form:"title" validate:"required,min=3"`
	Body  string `json:"body" form:"body" validate:"required"`
}
