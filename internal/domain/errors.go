package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed aggregation request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrWrongType signals an operation against a key holding another type.
	ErrWrongType = errors.New("wrong key type")
	// ErrUnavailable signals that the backing store cannot serve the request.
	ErrUnavailable = errors.New("store unavailable")
	// ErrForbidden signals the store rejected the command for the configured user.
	ErrForbidden = errors.New("forbidden")
)
