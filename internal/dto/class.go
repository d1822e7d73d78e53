package dto

// CreateClassRequest captures the teacher class creation payload.
type CreateClassRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description"`
}

// UpdateClassRequest modifies class fields.
type UpdateClassRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description"`
}

// ArchiveClassRequest flips the class activity status. Status must be one of
// ACTIVE or ARCHIVED; anything else is a validation failure.
type ArchiveClassRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE ARCHIVED"`
}
