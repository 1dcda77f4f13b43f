package models

import "errors"

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidRecord indicates a record failed validation at the store boundary.
var ErrInvalidRecord = errors.New("invalid record")
