// Package common defines shared constants and sentinel errors used across
// the client and server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session/credential errors (fatal until re-initialization).
	ErrCredentials        = errors.New("credential acquisition failed")
	ErrCredentialsExpired = errors.New("credentials expired")
	ErrNotReady           = errors.New("synchronizer not ready")

	// User-correctable errors: no store mutation has happened.
	ErrValidation    = errors.New("validation error")
	ErrDuplicateName = errors.New("an entry with this name already exists")
	ErrWrongPassword = errors.New("wrong password")

	// Create-protocol errors.
	ErrCompression  = errors.New("compression failed")
	ErrRegistration = errors.New("metadata registration failed")

	// Delete-protocol errors. The metadata row is already gone when this is
	// returned; the blob is left behind as a degraded asset.
	ErrBlobDeleteAfterAuth = errors.New("blob delete failed after authorization")

	// Generic internal failure.
	ErrInternal = errors.New("internal error")
)
