package errors

import (
	"fmt"
	"net/http"
)

// Code binds a business code to its HTTP status and message
type Code struct {
	Code    int
	Status  int
	Message string
}

const (
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthInvalidToken = 2000
	ErrAuthTokenExpired = 2001

	// Listing search errors (3000-3999)
	ErrSearchStoreUnavailable = 3000

	// Saved search errors (4000-4999)
	ErrSavedSearchNotFound     = 4000
	ErrSavedSearchQuota        = 4001
	ErrSavedSearchInvalidInput = 4002
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	ErrAuthInvalidToken: {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	ErrAuthTokenExpired: {ErrAuthTokenExpired, http.StatusUnauthorized, "Token expired"},

	ErrSearchStoreUnavailable: {ErrSearchStoreUnavailable, http.StatusServiceUnavailable, "Listing store unavailable"},

	ErrSavedSearchNotFound:     {ErrSavedSearchNotFound, http.StatusNotFound, "Saved search not found"},
	ErrSavedSearchQuota:        {ErrSavedSearchQuota, http.StatusConflict, "Saved search limit reached"},
	ErrSavedSearchInvalidInput: {ErrSavedSearchInvalidInput, http.StatusBadRequest, "Invalid saved search input"},
}

// GetCode returns the Code for code, falling back to internal error
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns the HTTP status for code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for code
func GetMessage(code int) string {
	return GetCode(code).Message
}

func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}

// FormatError joins the code message with an optional detail
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
