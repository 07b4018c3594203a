// Package interfaces defines the core types and interfaces for the
// deterministic creation registry. It provides the contract between
// components without implementation details.
package interfaces

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Identity is a fixed-width value identifying an actor or a creatable
// location. The zero value is reserved: as an actor it means "nobody",
// as an allowed actor it disables creation entirely.
type Identity [20]byte

// NewIdentityFromBytes creates an identity from a raw 20-byte slice.
func NewIdentityFromBytes(source []byte) (Identity, error) {
	if len(source) != 20 {
		return Identity{}, errors.New("invalid identity length: must be 20 bytes")
	}

	var id Identity
	copy(id[:], source)
	return id, nil
}

// NewIdentityFromHex creates an identity from a 40-character hex string,
// with or without a 0x prefix.
func NewIdentityFromHex(source string) (Identity, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 40 {
		return Identity{}, errors.New("invalid identity length: hex string must be 40 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewIdentityFromBytes(raw)
}

// String returns the hex string representation of the identity.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 20-byte identity.
func (id Identity) Bytes() []byte {
	return id[:]
}

// Equal compares two identities for equality.
func (id Identity) Equal(other Identity) bool {
	return id == other
}

// IsZero reports whether the identity is the reserved zero value.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalText implements encoding.TextMarshaler using hex encoding.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := NewIdentityFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Salt is a caller-chosen 32-byte value used to vary the derived location
// for otherwise-identical content. Any value is legal, including zero and
// previously-used values; reuse is the caller's responsibility.
type Salt [32]byte

// NewSaltFromBytes creates a salt from a raw 32-byte slice.
func NewSaltFromBytes(source []byte) (Salt, error) {
	if len(source) != 32 {
		return Salt{}, errors.New("invalid salt length: must be 32 bytes")
	}

	var salt Salt
	copy(salt[:], source)
	return salt, nil
}

// NewSaltFromHex creates a salt from a 64-character hex string, with or
// without a 0x prefix.
func NewSaltFromHex(source string) (Salt, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return Salt{}, errors.New("invalid salt length: hex string must be 64 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return Salt{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewSaltFromBytes(raw)
}

// NewSaltFromUint64 creates a salt holding the big-endian encoding of n,
// zero-padded on the left. Convenient for tooling that numbers deployments.
func NewSaltFromUint64(n uint64) Salt {
	var salt Salt
	new(big.Int).SetUint64(n).FillBytes(salt[:])
	return salt
}

// String returns the hex string representation of the salt.
func (s Salt) String() string {
	return hex.EncodeToString(s[:])
}

// Bytes returns the raw 32-byte salt.
func (s Salt) Bytes() []byte {
	return s[:]
}

// MarshalText implements encoding.TextMarshaler using hex encoding.
func (s Salt) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Salt) UnmarshalText(text []byte) error {
	parsed, err := NewSaltFromHex(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ContentHash is the keccak256 digest of a content blob. It uniquely
// identifies the content to instantiate and feeds into location derivation.
type ContentHash [32]byte

// NewContentHashFromBytes creates a content hash from a raw 32-byte slice.
func NewContentHashFromBytes(source []byte) (ContentHash, error) {
	if len(source) != 32 {
		return ContentHash{}, errors.New("invalid content hash length: must be 32 bytes")
	}

	var hash ContentHash
	copy(hash[:], source)
	return hash, nil
}

// NewContentHashFromHex creates a content hash from a 64-character hex
// string, with or without a 0x prefix.
func NewContentHashFromHex(source string) (ContentHash, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ContentHash{}, errors.New("invalid content hash length: hex string must be 64 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return ContentHash{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewContentHashFromBytes(raw)
}

// String returns the hex string representation of the content hash.
func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the raw 32-byte hash.
func (h ContentHash) Bytes() []byte {
	return h[:]
}

// MarshalText implements encoding.TextMarshaler using hex encoding.
func (h ContentHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *ContentHash) UnmarshalText(text []byte) error {
	parsed, err := NewContentHashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
