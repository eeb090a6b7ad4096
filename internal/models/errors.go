package models

import "errors"

var (
	// ErrNotFound is returned when an aircraft or airport is unknown to the data layer
	ErrNotFound = errors.New("not found")

	// ErrDataUnavailable is returned when an external lookup fails
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInvalidInput is returned for malformed requests, before any processing starts
	ErrInvalidInput = errors.New("invalid input")
)
