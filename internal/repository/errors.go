package repository

import "errors"

var (
	// ErrInvalidID is returned for non-positive identifiers before any query runs.
	ErrInvalidID = errors.New("invalid id")
	// ErrCategoryReference is returned when a product names a category that does not exist.
	ErrCategoryReference = errors.New("referenced category does not exist")
)
