// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that an operation cannot proceed
// because of existing dependent records (e.g. deleting a session
// type that historical orders still reference), while the per-entity
// not-found sentinels map to HTTP 404 responses.
package repository

import "errors"

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as deleting a product that order items
// still reference or inserting a duplicate (name, sku) pair.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSessionTypeNotFound indicates that no matching active session
// type row exists.
var ErrSessionTypeNotFound = errors.New("session type not found")

// ErrProductNotFound indicates that no matching product row exists.
var ErrProductNotFound = errors.New("product not found")

// ErrPriceNotFound indicates that the (session type, product) pair
// has no active, dashboard-visible price row.  Inactive session
// types, inactive products and hidden products all surface as this
// error so callers cannot distinguish hidden catalog rows from
// missing ones.
var ErrPriceNotFound = errors.New("price not found")
