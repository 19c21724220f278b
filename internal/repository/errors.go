package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches the id and scope.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail is returned when a user email is already taken.
	ErrDuplicateEmail = errors.New("repository: duplicate email")
	// ErrReferenceViolation is returned when a write names a user that does
	// not exist, or a delete would orphan an enquiry's creator.
	ErrReferenceViolation = errors.New("repository: reference violation")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicateEmail
		case pgForeignKeyViolation:
			return ErrReferenceViolation
		case pgInvalidTextRepr:
			// malformed uuid literal: nothing can match it
			return ErrNotFound
		}
	}
	return err
}
