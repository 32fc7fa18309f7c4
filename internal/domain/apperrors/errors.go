// Package apperrors defines the error kinds surfaced by the store, the rate fetcher and the repositories.
package apperrors

import "errors"

// ErrNotFound indicates that a referenced Country or Travel does not exist.
var ErrNotFound = errors.New("not found")

// ErrPersistence indicates that the durable store failed to read or commit.
var ErrPersistence = errors.New("persistence error")

// ErrNetwork indicates that the rate provider was unreachable or answered with a non-success status.
var ErrNetwork = errors.New("network error")

// ErrDecode indicates that the rate provider's response could not be decoded.
var ErrDecode = errors.New("decode error")

// ErrDuplicate indicates an attempt to create a Country whose name is already taken.
var ErrDuplicate = errors.New("already exists")

// ErrValidation indicates that a descriptor failed validation.
var ErrValidation = errors.New("validation error")
