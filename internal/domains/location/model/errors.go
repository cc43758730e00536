package model

import "errors"

var (
	// ErrLocationNotFound is returned when no location matches the given ID.
	ErrLocationNotFound = errors.New("location not found")

	// ErrDuplicateCode is returned when a location code is already taken
	// within the company.
	ErrDuplicateCode = errors.New("location code already exists")
)
