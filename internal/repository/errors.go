// Package repository implements the MySQL persistence layer.  This file
// defines sentinel errors reused across repositories so handlers can map
// failure modes to HTTP responses without string matching.
package repository

import "errors"

// ErrEmailExists is returned when a signup collides with an existing email.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateStart is returned when an event insert collides with the
// unique index on the start timestamp.  Handlers translate this into a
// 400 "event already exists" response.
var ErrDuplicateStart = errors.New("event with this start already exists")
