package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map them to the
// API error taxonomy with errors.Is.
var (
	// ErrNotFound covers unknown players and sessions.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState covers lifecycle violations: submitting with no open
	// session, double completion, a hint after the budget is exhausted.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidArgument covers inputs rejected before any mutation, such
	// as a hint level outside 1..3.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict covers uniqueness violations (duplicate username).
	ErrConflict = errors.New("already exists")
)

// ErrHintsExhausted narrows ErrInvalidState for a hint requested after the
// per-session budget is spent, so handlers can tell it apart from a hint
// with no open session. errors.Is matches both sentinels.
var ErrHintsExhausted = fmt.Errorf("%w: hint budget exhausted", ErrInvalidState)

