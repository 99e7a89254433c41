// Package repository declares the persistence boundary used by the
// services together with the sentinel errors every backend returns.
// Backends live in the mongo, mysql and memory sub-packages.
package repository

import "errors"

// ErrNotFound is returned when no record matches an id or filter.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness
// constraint (phone, email, product code). Handlers translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidID is returned by backends whose ids have a fixed shape
// (ObjectID hex) when the given id cannot be parsed.
var ErrInvalidID = errors.New("invalid id")
