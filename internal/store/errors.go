package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateID is returned when a card with the same external id
// already exists. The original card is left unchanged.
var ErrDuplicateID = errors.New("duplicate external id")
