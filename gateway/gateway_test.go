package gateway

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/deterministic-creation-registry/backend"
	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

func ident(b byte) interfaces.Identity {
	var id interfaces.Identity
	id[19] = b
	return id
}

func newTestGateway(t *testing.T, owner interfaces.Identity) (*Gateway, *backend.MemoryClaimer, *RecordingSink) {
	t.Helper()
	claimer := backend.NewMemoryClaimer()
	sink := &RecordingSink{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(ident(0xAA), owner, claimer, sink, log), claimer, sink
}

func TestSetAllowedActor(t *testing.T) {
	owner := ident(1)
	actor := ident(2)
	stranger := ident(3)

	gw, _, sink := newTestGateway(t, owner)

	err := gw.SetAllowedActor(stranger, actor)
	assert.ErrorIs(t, err, interfaces.ErrNotOwner)
	assert.True(t, gw.AllowedActor().IsZero())
	assert.Empty(t, sink.ActorChanges)

	err = gw.SetAllowedActor(owner, actor)
	require.NoError(t, err)
	assert.Equal(t, actor, gw.AllowedActor())
	require.Len(t, sink.ActorChanges, 1)
	assert.Equal(t, actor, sink.ActorChanges[0])

	// Clearing the actor disables creation again.
	err = gw.SetAllowedActor(owner, interfaces.Identity{})
	require.NoError(t, err)
	assert.True(t, gw.AllowedActor().IsZero())
}

func TestCreate_AuthorizationGate(t *testing.T) {
	owner := ident(1)
	actor := ident(2)
	stranger := ident(3)

	gw, claimer, sink := newTestGateway(t, owner)
	require.NoError(t, gw.SetAllowedActor(owner, actor))

	_, err := gw.Create(stranger, interfaces.NewSaltFromUint64(1), []byte("content"))
	assert.ErrorIs(t, err, interfaces.ErrNotAllowed)
	assert.Equal(t, 0, claimer.Len(), "failed authorization must not touch the slot table")
	assert.Empty(t, sink.Creations)

	// The owner is not implicitly allowed to create.
	_, err = gw.Create(owner, interfaces.NewSaltFromUint64(1), []byte("content"))
	assert.ErrorIs(t, err, interfaces.ErrNotAllowed)
}

func TestCreate_DisabledWithZeroActor(t *testing.T) {
	owner := ident(1)
	gw, _, _ := newTestGateway(t, owner)

	// No allowed actor installed: nobody may create, not even a zero caller.
	_, err := gw.Create(interfaces.Identity{}, interfaces.Salt{}, []byte("content"))
	assert.ErrorIs(t, err, interfaces.ErrNotAllowed)
}

func TestCreate_EmptyContent(t *testing.T) {
	owner := ident(1)
	actor := ident(2)

	gw, claimer, _ := newTestGateway(t, owner)
	require.NoError(t, gw.SetAllowedActor(owner, actor))

	for _, salt := range []interfaces.Salt{{}, interfaces.NewSaltFromUint64(42)} {
		_, err := gw.Create(actor, salt, nil)
		assert.ErrorIs(t, err, interfaces.ErrEmptyContent)
		_, err = gw.Create(actor, salt, []byte{})
		assert.ErrorIs(t, err, interfaces.ErrEmptyContent)
	}
	assert.Equal(t, 0, claimer.Len())
}

func TestCreate_OccupiedSlot(t *testing.T) {
	owner := ident(1)
	actor := ident(2)

	gw, claimer, sink := newTestGateway(t, owner)
	require.NoError(t, gw.SetAllowedActor(owner, actor))

	salt := interfaces.NewSaltFromUint64(7)
	content := []byte("artifact body")

	first, err := gw.Create(actor, salt, content)
	require.NoError(t, err)
	assert.True(t, claimer.Occupied(first))

	_, err = gw.Create(actor, salt, content)
	assert.ErrorIs(t, err, interfaces.ErrSlotOccupied)

	// The first creation's record is untouched by the failed retry.
	record, occupied := claimer.SlotAt(first)
	require.True(t, occupied)
	assert.Equal(t, oracle.HashContent(content), record.ContentHash)
	assert.Equal(t, 1, claimer.Len())
	assert.Len(t, sink.Creations, 1)
}

func TestTwoStepOwnership(t *testing.T) {
	ownerA := ident(1)
	ownerB := ident(2)
	actor := ident(3)

	gw, _, sink := newTestGateway(t, ownerA)

	// Accepting with nothing nominated fails.
	err := gw.AcceptOwnership(ownerB)
	assert.ErrorIs(t, err, interfaces.ErrNoPendingOwner)

	require.NoError(t, gw.TransferOwnership(ownerA, ownerB))
	pending, ok := gw.PendingOwner()
	require.True(t, ok)
	assert.Equal(t, ownerB, pending)

	// Nomination alone grants nothing.
	err = gw.SetAllowedActor(ownerB, actor)
	assert.ErrorIs(t, err, interfaces.ErrNotOwner)
	assert.Equal(t, ownerA, gw.Owner())

	// Only the nominee may accept.
	err = gw.AcceptOwnership(actor)
	assert.ErrorIs(t, err, interfaces.ErrNotPendingOwner)

	require.NoError(t, gw.AcceptOwnership(ownerB))
	assert.Equal(t, ownerB, gw.Owner())
	_, ok = gw.PendingOwner()
	assert.False(t, ok)
	require.Len(t, sink.OwnerChanges, 1)
	assert.Equal(t, ownerB, sink.OwnerChanges[0])

	// Old owner is fully retired, new owner is in control.
	err = gw.SetAllowedActor(ownerA, actor)
	assert.ErrorIs(t, err, interfaces.ErrNotOwner)
	require.NoError(t, gw.SetAllowedActor(ownerB, actor))
}

func TestTransferOwnership_Renomination(t *testing.T) {
	ownerA := ident(1)
	first := ident(2)
	second := ident(3)

	gw, _, _ := newTestGateway(t, ownerA)

	require.NoError(t, gw.TransferOwnership(ownerA, first))
	require.NoError(t, gw.TransferOwnership(ownerA, second))

	// The replaced nominee can no longer accept.
	err := gw.AcceptOwnership(first)
	assert.ErrorIs(t, err, interfaces.ErrNotPendingOwner)
	require.NoError(t, gw.AcceptOwnership(second))
	assert.Equal(t, second, gw.Owner())
}

func TestTransferOwnership_ZeroNomineeCancels(t *testing.T) {
	ownerA := ident(1)
	nominee := ident(2)

	gw, _, _ := newTestGateway(t, ownerA)
	require.NoError(t, gw.TransferOwnership(ownerA, nominee))
	require.NoError(t, gw.TransferOwnership(ownerA, interfaces.Identity{}))

	_, ok := gw.PendingOwner()
	assert.False(t, ok)
	err := gw.AcceptOwnership(nominee)
	assert.ErrorIs(t, err, interfaces.ErrNoPendingOwner)
}

func TestEndToEndScenario(t *testing.T) {
	owner := ident(0x10)
	deployer := ident(0x20)
	stranger := ident(0x30)

	gw, _, sink := newTestGateway(t, owner)

	require.NoError(t, gw.SetAllowedActor(owner, deployer))
	require.Len(t, sink.ActorChanges, 1)
	assert.Equal(t, deployer, sink.ActorChanges[0])

	blob := []byte("template || encoded constructor params")
	hash := gw.HashContent(blob)
	salt := interfaces.NewSaltFromUint64(1)

	predicted := gw.ComputeLocation(salt, hash)

	location, err := gw.Create(deployer, salt, blob)
	require.NoError(t, err)
	assert.Equal(t, predicted, location, "realized location must equal the independently predicted one")

	require.Len(t, sink.Creations, 1)
	assert.Equal(t, salt, sink.Creations[0].Salt)
	assert.Equal(t, location, sink.Creations[0].Location)

	_, err = gw.Create(deployer, salt, blob)
	assert.ErrorIs(t, err, interfaces.ErrSlotOccupied)

	_, err = gw.Create(stranger, salt, blob)
	assert.ErrorIs(t, err, interfaces.ErrNotAllowed)
}

type misbehavingClaimer struct{}

func (misbehavingClaimer) Claim(creator interfaces.Identity, salt interfaces.Salt, content []byte) (interfaces.Identity, error) {
	return ident(0xFF), nil
}

func TestCreate_LocationMismatch(t *testing.T) {
	owner := ident(1)
	actor := ident(2)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := New(ident(0xAA), owner, misbehavingClaimer{}, nil, log)
	require.NoError(t, gw.SetAllowedActor(owner, actor))

	_, err := gw.Create(actor, interfaces.Salt{}, []byte("content"))
	assert.ErrorIs(t, err, interfaces.ErrLocationMismatch)
}
