package models

import (
	"time"
)

// Error codes returned in the error envelope. The HTTP status carries the
// class (401/403/404/400/500); the code pins down the exact failure.
const (
	CodeAuthRequired  = "AUTH_REQUIRED"
	CodeForbidden     = "AUTHZ_FORBIDDEN"
	CodeNotOrganizer  = "AUTHZ_NOT_ORGANIZER"
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidFormat = "VALIDATION_INVALID_FORMAT"
	CodeInvalidScore  = "VALIDATION_INVALID_SCORE"
	CodeDatabaseError = "SYSTEM_DATABASE_ERROR"
	CodeStoreError    = "EXTERNAL_STORE_ERROR"
	CodeInternalError = "SYSTEM_INTERNAL_ERROR"
)

// APIError is the payload inside every error envelope. Message must stay
// user-safe; store/driver detail goes to the server log only.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope is the fixed error response shape for every endpoint.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Request bodies are strict typed structs: a mistyped field fails parsing
// before any business logic runs.

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"required"`
}

type UpdateScoreRequest struct {
	Score *int64 `json:"score" validate:"required,min=0,max=1010000"`
}

type MarkNotificationReadRequest struct {
	IsRead *bool `json:"is_read" validate:"required"`
}

type CreateTournamentRequest struct {
	Title           string     `json:"title" validate:"required,min=1,max=120"`
	Description     string     `json:"description" validate:"max=4000"`
	StartTime       time.Time  `json:"start_time" validate:"required"`
	EndTime         time.Time  `json:"end_time"`
	PublishSchedule *time.Time `json:"publish_schedule"`
}

type UpdateTournamentRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=120"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

type SchedulePublishRequest struct {
	PublishAt time.Time `json:"publish_at" validate:"required"`
}
