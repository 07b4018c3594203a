package interfaces

import "context"

// SlotClaimer is the host environment's atomic creation primitive. Claim
// recomputes the location derivation internally and either binds the
// artifact to the derived location, returning it, or fails with
// ErrSlotOccupied if something already lives there. The occupied/free
// check happens inside Claim itself; callers must not pre-check.
type SlotClaimer interface {
	Claim(creator Identity, salt Salt, content []byte) (Identity, error)
}

// EventSink consumes registry notifications. Implementations must not
// block; sinks are invoked synchronously from state-mutating operations.
type EventSink interface {
	// AllowedActorChanged is emitted when the owner installs a new allowed
	// actor, including the zero identity which disables creation.
	AllowedActorChanged(newActor Identity)

	// OwnerChanged is emitted when a nominated successor accepts ownership.
	OwnerChanged(newOwner Identity)

	// NewCreation is emitted when an artifact is successfully instantiated
	// at a derived location.
	NewCreation(salt Salt, location Identity)
}

// CreationRegistry is the registry surface consumed by transports and
// tooling. The caller identity is threaded explicitly into every
// state-mutating operation; implementations authenticate it upstream.
type CreationRegistry interface {
	// RegistryIdentity returns the registry's own identity, used as the
	// creator in location derivation.
	RegistryIdentity() Identity

	// SetAllowedActor installs newActor as the sole identity permitted to
	// request creations. Owner only.
	SetAllowedActor(caller, newActor Identity) error

	// TransferOwnership nominates a successor. The nomination has no
	// effect until the nominee accepts; re-nominating replaces any
	// previous nominee. Owner only.
	TransferOwnership(caller, nominee Identity) error

	// AcceptOwnership completes the two-step handshake. Pending owner only.
	AcceptOwnership(caller Identity) error

	// Create instantiates content at the location derived from the
	// registry identity, salt, and the content's hash. Allowed actor only.
	Create(caller Identity, salt Salt, content []byte) (Identity, error)

	// ComputeLocation derives the target location for a prospective
	// creation without attempting it.
	ComputeLocation(salt Salt, contentHash ContentHash) Identity

	// HashContent returns the content hash of a blob.
	HashContent(content []byte) ContentHash

	Owner() Identity
	PendingOwner() (Identity, bool)
	AllowedActor() Identity
}

// ArtifactStore is a content-addressed blob store used by deployment
// tooling to stage content blobs ahead of creation requests.
type ArtifactStore interface {
	// Store saves a blob and returns its content hash.
	Store(ctx context.Context, blob []byte) (ContentHash, error)

	// Fetch retrieves a blob by content hash. Returns ErrContentNotFound
	// if the blob does not exist.
	Fetch(ctx context.Context, hash ContentHash) ([]byte, error)

	// Available reports whether the backend is reachable.
	Available(ctx context.Context) bool

	// Name returns a unique identifier for this backend.
	Name() string

	// LocationURI returns the URI that identifies this backend.
	LocationURI() string
}
