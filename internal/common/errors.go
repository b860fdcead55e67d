// Package common defines shared constants and sentinel errors used across
// client and server layers of the media pipeline. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Generic service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Verification widget lifecycle errors.
	ErrScriptLoadTimeout = errors.New("verification script load timed out")
	ErrScriptLoadFailed  = errors.New("verification script load failed")
	ErrNotReady          = errors.New("verification widget not ready")
	ErrExecutionFailed   = errors.New("verification execution failed")

	// Permit errors. Exhausted and expired are distinct so the send path
	// can tell "ask for a new permit" apart from "quota spent".
	ErrPermitExchangeFailed = errors.New("permit exchange failed")
	ErrPermitExhausted      = errors.New("permit has no uses left")
	ErrPermitExpired        = errors.New("permit expired")

	// Auth token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Upload pipeline errors.
	ErrTicketDenied        = errors.New("upload ticket denied")
	ErrUploadPutFailed     = errors.New("upload put failed")
	ErrFinalizeFailed      = errors.New("media finalize failed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")

	// Signed-view errors. Consumers degrade to "key unresolved" rather
	// than failing a render on this.
	ErrSignBatchFailed = errors.New("sign batch failed")
)
