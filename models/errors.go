package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrValidation marks a field-level constraint violation.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateGrant is returned when a trust/agency pair already has a grant.
	ErrDuplicateGrant = errors.New("access grant already exists for this trust and agency")
	// ErrUniqueness is returned when a globally unique attribute collides.
	ErrUniqueness = errors.New("unique value already in use")
	// ErrInvalidState is returned when an entity is not in the state an operation requires.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrPermissionDenied is returned on role or ownership check failures.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// notFound converts gorm's missing-record error into ErrNotFound, wrapping anything else.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// isUniqueConstraintError detects uniqueness violations from postgres and sqlite.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") || strings.Contains(lower, "duplicate")
}
