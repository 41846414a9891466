package biz

import "errors"

var (
	ErrQuotaExceeded       = errors.New("saved search quota exceeded")
	ErrSavedSearchNotFound = errors.New("saved search not found")
	ErrPrincipalRequired   = errors.New("principal is required")
	ErrNameRequired        = errors.New("saved search name is required")
)
