package main

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Domain error kinds. Services return these unwrapped so that handlers can
// classify them with errors.As and map them onto HTTP status codes. Anything
// that is not one of these kinds is treated as an internal error.

// NotFoundError means a referenced entity does not exist where existence was
// required (playlist, song, album, user, collaboration, like).
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

func notFound(msg string) error { return &NotFoundError{msg: msg} }

// AuthorizationError means the entity exists but the acting user lacks the
// required relationship to it.
type AuthorizationError struct {
	msg string
}

func (e *AuthorizationError) Error() string { return e.msg }

func forbidden(msg string) error { return &AuthorizationError{msg: msg} }

// AuthenticationError means the caller could not be identified at all
// (missing/invalid token, wrong credentials).
type AuthenticationError struct {
	msg string
}

func (e *AuthenticationError) Error() string { return e.msg }

func unauthenticated(msg string) error { return &AuthenticationError{msg: msg} }

// InvariantError means a business rule was violated: duplicate like,
// duplicate collaboration, or an insert the store did not confirm.
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string { return e.msg }

func invariant(msg string) error { return &InvariantError{msg: msg} }

// ConflictError is raised when a uniqueness constraint rejects a racing
// insert that slipped past the pre-check. The row was not duplicated; the
// caller lost the race.
type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string { return e.msg }

func conflict(msg string) error { return &ConflictError{msg: msg} }

// isDuplicateEntry reports whether err is a MySQL duplicate-entry error
// (code 1062) from a unique key.
func isDuplicateEntry(err error) bool {
	var merr *mysql.MySQLError
	return errors.As(err, &merr) && merr.Number == 1062
}
