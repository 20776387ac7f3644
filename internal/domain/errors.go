package domain

import "errors"

var (
	// ErrInvalidInput marks missing or malformed caller input: empty
	// item sets, unrecognized enum values, absent required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("record not found")
)
