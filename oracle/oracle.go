// Package oracle implements the address oracle: pure functions mapping
// (creator identity, salt, content hash) to the deterministic location at
// which an artifact will be instantiated.
//
// The derivation follows the CREATE2 scheme: the location is the 20-byte
// suffix of keccak256(0xff || creator || salt || contentHash), where 0xff
// is a tag distinguishing this scheme from other address derivations in
// the same host environment. For fixed inputs the mapping is identical
// across hosts, which is what makes target locations verifiable before a
// creation is ever attempted.
package oracle

import (
	"golang.org/x/crypto/sha3"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
)

// CreationTag prefixes every derivation, separating this scheme's hash
// preimages from those of other address-derivation schemes.
const CreationTag byte = 0xff

// HashContent returns the keccak256 digest of a content blob, exactly as
// given. Any byte sequence, including empty, is valid input.
func HashContent(blob []byte) interfaces.ContentHash {
	h := sha3.NewLegacyKeccak256()
	h.Write(blob)

	var hash interfaces.ContentHash
	copy(hash[:], h.Sum(nil))
	return hash
}

// DeriveLocation computes the deterministic target location for a
// creation. It is a pure function of its three inputs; the same triple
// always yields the same location on any host.
func DeriveLocation(creator interfaces.Identity, salt interfaces.Salt, contentHash interfaces.ContentHash) interfaces.Identity {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{CreationTag})
	h.Write(creator[:])
	h.Write(salt[:])
	h.Write(contentHash[:])
	sum := h.Sum(nil)

	var location interfaces.Identity
	copy(location[:], sum[12:])
	return location
}
