// Package handlers implements the HTTP endpoints of the public API.
// Handlers are transport-thin: parse input, call the service, translate the
// result into a JSON response.
//
// This file holds the stable machine-readable error codes carried in every
// error envelope alongside the HTTP status.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
