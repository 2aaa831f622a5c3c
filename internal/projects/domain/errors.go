package domain

import "github.com/sentinel-red/sentinel-backend/internal/apperr"

var (
	ErrProjectNotFound = apperr.NotFound("project not found")
	ErrNameRequired    = apperr.Validation("project name is required")
	ErrInvalidType     = apperr.Validation("project type must be api or codebase")
)
