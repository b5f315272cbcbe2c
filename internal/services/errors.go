// Package services defines the business logic for document queries and data
// ingestion. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrDocumentNotFound indicates that the requested document does not
	// exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEmptyQuery is returned when a search is attempted with a blank
	// query string.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrEmptyTag is returned when an industry-tag lookup is attempted with
	// a blank tag.
	ErrEmptyTag = errors.New("industry tag is empty")
)
