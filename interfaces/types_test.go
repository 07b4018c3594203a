package interfaces

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityHexRoundTrip(t *testing.T) {
	id, err := NewIdentityFromHex("0x000102030405060708090a0b0c0d0e0f10111213")
	require.NoError(t, err)
	assert.Equal(t, "000102030405060708090a0b0c0d0e0f10111213", id.String())

	// Without the 0x prefix.
	same, err := NewIdentityFromHex("000102030405060708090a0b0c0d0e0f10111213")
	require.NoError(t, err)
	assert.True(t, id.Equal(same))

	_, err = NewIdentityFromHex("0011")
	assert.Error(t, err)
	_, err = NewIdentityFromHex("zz0102030405060708090a0b0c0d0e0f10111213")
	assert.Error(t, err)
}

func TestIdentityIsZero(t *testing.T) {
	assert.True(t, Identity{}.IsZero())

	var id Identity
	id[19] = 1
	assert.False(t, id.IsZero())
}

func TestSaltFromUint64(t *testing.T) {
	salt := NewSaltFromUint64(1)
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000001", salt.String())
	assert.Equal(t, Salt{}, NewSaltFromUint64(0))
}

func TestSaltHexRoundTrip(t *testing.T) {
	salt, err := NewSaltFromHex("0xff00000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), salt[0])
	assert.Equal(t, byte(0x01), salt[31])

	_, err = NewSaltFromHex("ff00")
	assert.Error(t, err)
}

func TestContentHashHexRoundTrip(t *testing.T) {
	raw := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	hash, err := NewContentHashFromHex(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, hash.String())

	_, err = NewContentHashFromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestJSONEncoding(t *testing.T) {
	type payload struct {
		Actor Identity    `json:"actor"`
		Salt  Salt        `json:"salt"`
		Hash  ContentHash `json:"hash"`
	}

	in := payload{Salt: NewSaltFromUint64(7)}
	in.Actor[19] = 0xAB
	in.Hash[0] = 0xCD

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
