// Package apperr defines the error kinds services return and how they map to
// HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

type Kind string

const (
	Validation            Kind = "validation_error"
	NotFound              Kind = "not_found"
	Unauthenticated       Kind = "unauthenticated"
	InvalidCredentials    Kind = "invalid_credentials"
	AccountInactive       Kind = "account_inactive"
	Forbidden             Kind = "forbidden"
	Conflict              Kind = "conflict"
	EmptyOrder            Kind = "empty_order"
	MissingLocationFilter Kind = "missing_location_filter"
	DuplicateIngredient   Kind = "duplicate_ingredient"
	StorageFailure        Kind = "storage_failure"
)

// Status is the HTTP status a kind is rendered with.
func (k Kind) Status() int {
	switch k {
	case Validation, EmptyOrder, MissingLocationFilter, DuplicateIngredient:
		return http.StatusBadRequest
	case Unauthenticated, InvalidCredentials, AccountInactive:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf classifies err. Unknown errors are storage failures.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Validation
	}
	return StorageFailure
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromDB turns a GORM error into a typed error. entity names the thing being
// read or written ("order", "menu item") for the client-facing message.
func FromDB(err error, entity string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	switch KindOf(err) {
	case NotFound:
		return Wrap(NotFound, entity+" not found", err)
	case Conflict:
		return Wrap(Conflict, entity+" already exists", err)
	case Validation:
		return Wrap(Validation, entity+" references a record that does not exist", err)
	}
	return Wrap(StorageFailure, "could not persist "+entity, err)
}
