// Package gateway implements the creation gateway: the stateful component
// that validates callers against the registry's access state before
// delegating instantiation to the host environment's creation primitive.
//
// The access state is two roles held as explicit fields: an owner, which
// exclusively controls who the allowed actor is and runs the two-step
// ownership handshake, and an allowed actor, the sole identity permitted
// to request creations. The allowed actor is an operational credential
// expected to rotate often; setting it to the zero identity disables
// creation entirely.
package gateway

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

// Gateway validates callers and delegates creations to a SlotClaimer. All
// state-mutating operations are serialized under a single lock, giving
// external callers the total order the registry's semantics assume. An
// operation either fully succeeds or fully fails; errors never leave
// partial state behind.
type Gateway struct {
	identity interfaces.Identity
	claimer  interfaces.SlotClaimer
	sink     interfaces.EventSink
	log      *slog.Logger

	mu           sync.Mutex
	owner        interfaces.Identity
	pendingOwner interfaces.Identity
	allowedActor interfaces.Identity
}

// New creates a gateway with the given registry identity and initial
// owner. The allowed actor starts empty, so creation is disabled until the
// owner installs one. A nil sink discards notifications.
func New(identity, initialOwner interfaces.Identity, claimer interfaces.SlotClaimer, sink interfaces.EventSink, log *slog.Logger) *Gateway {
	if sink == nil {
		sink = NoopSink{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Gateway{
		identity: identity,
		claimer:  claimer,
		sink:     sink,
		log:      log,
		owner:    initialOwner,
	}
}

// RegistryIdentity returns the registry's own identity, the creator value
// threaded into every location derivation.
func (g *Gateway) RegistryIdentity() interfaces.Identity {
	return g.identity
}

// SetAllowedActor installs newActor as the sole identity permitted to
// request creations. Only the current owner may call it. Installing the
// zero identity disables creation.
func (g *Gateway) SetAllowedActor(caller, newActor interfaces.Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !caller.Equal(g.owner) {
		return interfaces.ErrNotOwner
	}

	g.allowedActor = newActor
	g.log.Info("allowed actor changed",
		slog.String("newActor", newActor.String()),
		slog.String("owner", caller.String()))
	g.sink.AllowedActorChanged(newActor)
	return nil
}

// TransferOwnership nominates a successor. The nomination takes no effect
// until the nominee accepts; a later nomination replaces an earlier one.
// Only the current owner may call it.
func (g *Gateway) TransferOwnership(caller, nominee interfaces.Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !caller.Equal(g.owner) {
		return interfaces.ErrNotOwner
	}

	g.pendingOwner = nominee
	g.log.Info("ownership transfer nominated",
		slog.String("nominee", nominee.String()),
		slog.String("owner", caller.String()))
	return nil
}

// AcceptOwnership completes the handshake: the caller must be the
// nominated successor, and on success becomes the owner with the
// nomination cleared.
func (g *Gateway) AcceptOwnership(caller interfaces.Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pendingOwner.IsZero() {
		return interfaces.ErrNoPendingOwner
	}
	if !caller.Equal(g.pendingOwner) {
		return interfaces.ErrNotPendingOwner
	}

	g.owner = g.pendingOwner
	g.pendingOwner = interfaces.Identity{}
	g.log.Info("ownership transferred", slog.String("newOwner", caller.String()))
	g.sink.OwnerChanged(caller)
	return nil
}

// Create instantiates content at the location derived from the registry
// identity, salt, and the content's hash.
//
// Checks run in a fixed order: authorization first, so unauthorized
// callers learn nothing about content validity, then the empty-content
// rejection, then derivation and delegation. The gateway does not
// pre-check slot occupancy; that check is inherently a race against other
// creations, so the authoritative decision happens inside the claimer's
// atomic Claim operation.
func (g *Gateway) Create(caller interfaces.Identity, salt interfaces.Salt, content []byte) (interfaces.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.allowedActor.IsZero() || !caller.Equal(g.allowedActor) {
		return interfaces.Identity{}, interfaces.ErrNotAllowed
	}
	if len(content) == 0 {
		return interfaces.Identity{}, interfaces.ErrEmptyContent
	}

	contentHash := oracle.HashContent(content)
	derived := oracle.DeriveLocation(g.identity, salt, contentHash)

	location, err := g.claimer.Claim(g.identity, salt, content)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("creation failed: %w", err)
	}

	// The claimer recomputes the derivation independently; the two results
	// must agree or the backend does not implement the scheme.
	if !location.Equal(derived) {
		return interfaces.Identity{}, fmt.Errorf("%w: claimed %s, derived %s",
			interfaces.ErrLocationMismatch, location, derived)
	}

	g.log.Info("artifact created",
		slog.String("location", location.String()),
		slog.String("salt", salt.String()),
		slog.String("contentHash", contentHash.String()),
		slog.Int("contentSize", len(content)))
	g.sink.NewCreation(salt, location)
	return location, nil
}

// ComputeLocation derives the target location for a prospective creation
// without attempting it. Read-only; any caller may use it to verify a
// target ahead of time.
func (g *Gateway) ComputeLocation(salt interfaces.Salt, contentHash interfaces.ContentHash) interfaces.Identity {
	return oracle.DeriveLocation(g.identity, salt, contentHash)
}

// HashContent returns the content hash of a blob. Read-only, no state
// access.
func (g *Gateway) HashContent(content []byte) interfaces.ContentHash {
	return oracle.HashContent(content)
}

// Owner returns the current owner.
func (g *Gateway) Owner() interfaces.Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.owner
}

// PendingOwner returns the nominated successor, if any.
func (g *Gateway) PendingOwner() (interfaces.Identity, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pendingOwner, !g.pendingOwner.IsZero()
}

// AllowedActor returns the identity currently permitted to request
// creations; zero means creation is disabled.
func (g *Gateway) AllowedActor() interfaces.Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allowedActor
}
