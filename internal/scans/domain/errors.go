package domain

import "github.com/sentinel-red/sentinel-backend/internal/apperr"

var (
	ErrScanNotFound    = apperr.NotFound("scan not found")
	ErrScanExists      = apperr.Validation("scan already exists")
	ErrProjectRequired = apperr.Validation("project id is required")
)
