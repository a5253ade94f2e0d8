// Package repository implements data access for users and manufacturers.
// This file defines sentinel errors shared across repositories so that
// handlers can translate failure scenarios into HTTP statuses without
// inspecting driver-level errors themselves.
package repository

import "errors"

// ErrVersionConflict is returned when a conditional write loses an
// optimistic-concurrency race: the manufacturer row was modified between
// the read and the write.  Handlers translate this into HTTP 409.
var ErrVersionConflict = errors.New("version conflict")

// ErrManufacturerNotFound is returned when no manufacturer exists for the
// given id.  Handlers translate this into HTTP 404.
var ErrManufacturerNotFound = errors.New("manufacturer not found")

// ErrManufacturerExists is returned when a create or rename collides with
// the unique index on the manufacturer name.
var ErrManufacturerExists = errors.New("manufacturer name already exists")

// ErrProductNotFound is returned when the parent manufacturer exists but
// holds no product with the given id.
var ErrProductNotFound = errors.New("product not found")

// ErrUsernameExists is returned when registration collides with the unique
// index on usernames.
var ErrUsernameExists = errors.New("username already exists")
