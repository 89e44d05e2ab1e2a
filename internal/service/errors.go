package service

import (
	"errors"
	"fmt"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

var (
	ErrNoValidData          = errors.New("no valid data found")
	ErrSyncInFlight         = errors.New("sync already in progress")
	ErrInvalidCredentials   = errors.New("username or password is incorrect")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateUsername    = errors.New("username already exists")
)

type SyncErrorKind string

const (
	KindConfig    SyncErrorKind = "config"
	KindTransport SyncErrorKind = "transport"
	KindDecode    SyncErrorKind = "decode"
	KindEmpty     SyncErrorKind = "empty"
	KindInFlight  SyncErrorKind = "in_flight"
	KindStore     SyncErrorKind = "store"
)

// SyncError is returned by every failed sync. Err keeps the underlying cause,
// e.g. the original parse error for KindDecode.
type SyncError struct {
	Kind   SyncErrorKind
	Entity model.EntityKind
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s sync failed (%s): %v", e.Entity, e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
