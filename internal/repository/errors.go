// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when the addressed row does not exist.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// constraint, e.g. an e-mail address that is already registered.
var ErrDuplicate = errors.New("duplicate")

// ErrConflict is returned when a delete cannot be performed because of
// dependent rows, such as deleting a showtime that already has sales.
var ErrConflict = errors.New("conflict")
