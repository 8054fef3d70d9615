package model

import "errors"

var (
	// ErrCatalogNotFound is returned when no catalog snapshot is cached
	ErrCatalogNotFound = errors.New("catalog snapshot not found")
	// ErrSessionNotFound is returned for unknown or expired chat sessions
	ErrSessionNotFound = errors.New("session not found")
	// ErrLLMUnavailable is returned when no remote generation provider is configured
	ErrLLMUnavailable = errors.New("remote generation unavailable")
	// ErrEmptyGeneration is returned when the remote model answers with blank text
	ErrEmptyGeneration = errors.New("remote generation returned empty text")
)
