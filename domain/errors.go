package domain

import "errors"

var (
	UnexpectedDatabaseError = errors.New("unexpected-database-error")
	ErrUserNotFound         = errors.New("user-not-found")
	ErrClanNotFound         = errors.New("clan-not-found")
	ErrDuplicateUsername    = errors.New("duplicate-username")
)
