package oracle

import (
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
)

func randomIdentity(t *testing.T) interfaces.Identity {
	t.Helper()
	var id interfaces.Identity
	_, err := rand.Read(id[:])
	require.NoError(t, err)
	return id
}

func randomSalt(t *testing.T) interfaces.Salt {
	t.Helper()
	var salt interfaces.Salt
	_, err := rand.Read(salt[:])
	require.NoError(t, err)
	return salt
}

func TestHashContent_Deterministic(t *testing.T) {
	blob := []byte("artifact template with encoded constructor parameters")

	first := HashContent(blob)
	second := HashContent(blob)
	assert.Equal(t, first, second)

	other := HashContent([]byte("a different blob"))
	assert.NotEqual(t, first, other)
}

func TestHashContent_EmptyInput(t *testing.T) {
	// keccak256 of the empty string, a fixed constant of the hash function.
	empty := HashContent(nil)
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", empty.String())
	assert.Equal(t, empty, HashContent([]byte{}))
}

func TestDeriveLocation_Deterministic(t *testing.T) {
	creator := randomIdentity(t)
	salt := randomSalt(t)
	contentHash := HashContent([]byte{0xde, 0xad, 0xbe, 0xef})

	first := DeriveLocation(creator, salt, contentHash)
	second := DeriveLocation(creator, salt, contentHash)
	assert.Equal(t, first, second)
	assert.False(t, first.IsZero())
}

func TestDeriveLocation_Sensitivity(t *testing.T) {
	creator := randomIdentity(t)
	salt := randomSalt(t)
	contentHash := HashContent([]byte("content"))

	base := DeriveLocation(creator, salt, contentHash)

	otherCreator := creator
	otherCreator[0] ^= 0x01
	assert.NotEqual(t, base, DeriveLocation(otherCreator, salt, contentHash), "creator change must move the location")

	otherSalt := salt
	otherSalt[31] ^= 0x01
	assert.NotEqual(t, base, DeriveLocation(creator, otherSalt, contentHash), "salt change must move the location")

	otherHash := HashContent([]byte("content2"))
	assert.NotEqual(t, base, DeriveLocation(creator, salt, otherHash), "content change must move the location")
}

// The derivation must agree bit for bit with the host environment's own
// CREATE2 computation, here represented by go-ethereum's implementation.
func TestDeriveLocation_MatchesCreate2(t *testing.T) {
	for i := 0; i < 32; i++ {
		creator := randomIdentity(t)
		salt := randomSalt(t)
		content := make([]byte, 64)
		_, err := rand.Read(content)
		require.NoError(t, err)

		want := crypto.CreateAddress2(common.Address(creator), salt, crypto.Keccak256(content))
		got := DeriveLocation(creator, salt, HashContent(content))
		require.Equal(t, want.Bytes(), got.Bytes())
	}
}

// Known vector from the CREATE2 specification: zero creator, zero salt,
// content 0x00.
func TestDeriveLocation_KnownVector(t *testing.T) {
	location := DeriveLocation(interfaces.Identity{}, interfaces.Salt{}, HashContent([]byte{0x00}))
	assert.Equal(t, "4d1a2e2bb4f88f0250f26ffff098b0b30b26bf38", location.String())
}

func TestDeriveLocation_SaltReuseAcrossContent(t *testing.T) {
	creator := randomIdentity(t)
	salt := interfaces.NewSaltFromUint64(1)

	locA := DeriveLocation(creator, salt, HashContent([]byte("blob A")))
	locB := DeriveLocation(creator, salt, HashContent([]byte("blob B")))
	assert.NotEqual(t, locA, locB)
}
