package lib

import (
	"errors"
	"syntech_importer/database"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Feed and import errors
var (
	ErrMalformedFeed   = errors.New("malformed feed")
	ErrMissingSKU      = errors.New("record missing sku")
	ErrRunInProgress   = errors.New("import run already in progress")
	ErrInvalidImageURL = errors.New("invalid image url")
)

// Auth errors
var (
	ErrInvalidToken = errors.New("invalid token")
)

func MapPgError(err error) error {
	switch database.SQLState(err) {
	case "23505": // unique_violation
		return ErrConflict
	case "P0002": // no_data_found
		return ErrNotFound
	}
	return err
}
