package domain

import "errors"

// Sentinel errors for classification at the transport boundary.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrTemplateNotFound = errors.New("template not found")
)
