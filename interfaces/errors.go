package interfaces

import "errors"

// Authorization errors. Reported synchronously to the caller, never
// retried automatically, never mutate registry state.
var (
	// ErrNotOwner is returned when a caller other than the current owner
	// attempts an owner-only operation.
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrNotAllowed is returned when a caller other than the current
	// allowed actor requests a creation.
	ErrNotAllowed = errors.New("caller is not the allowed actor")

	// ErrNotPendingOwner is returned when a caller other than the nominated
	// successor attempts to accept ownership.
	ErrNotPendingOwner = errors.New("caller is not the pending owner")

	// ErrNoPendingOwner is returned when ownership acceptance is attempted
	// with no nomination outstanding.
	ErrNoPendingOwner = errors.New("no pending owner nominated")
)

// Input-validity errors.
var (
	// ErrEmptyContent is returned when a creation is requested with an
	// empty content blob.
	ErrEmptyContent = errors.New("content blob is empty")
)

// Environment errors, surfaced by the host environment's creation
// primitive. The caller is expected to choose a different salt and retry.
var (
	// ErrSlotOccupied is returned when an artifact already exists at the
	// derived location.
	ErrSlotOccupied = errors.New("slot already occupied")

	// ErrLocationMismatch is returned when the host environment claims a
	// location that differs from the independently derived one. A
	// conforming slot claimer never triggers it.
	ErrLocationMismatch = errors.New("claimed location does not match derived location")
)

// Artifact store errors.
var (
	// ErrContentNotFound indicates the requested blob does not exist in
	// the artifact store.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable indicates the artifact store backend cannot
	// be reached.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrContentHashMismatch indicates a fetched blob does not hash to the
	// content hash it was requested under.
	ErrContentHashMismatch = errors.New("fetched content does not match requested hash")

	// ErrInvalidLocationURI indicates a storage backend URI could not be
	// parsed.
	ErrInvalidLocationURI = errors.New("invalid storage backend URI")
)
