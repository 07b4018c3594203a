// Package storage implements content-addressed artifact stores used by
// deployment tooling to stage content blobs ahead of creation requests.
// Blobs are keyed by their keccak256 content hash, the same hash that
// feeds location derivation, so a staged blob can be referenced by hash
// in a creation request and verified on the way out.
//
// Supported backends: local filesystem, Amazon S3 (or compatible), IPFS,
// and HashiCorp Vault, plus a multi-backend aggregator with fallback.
package storage

import (
	"fmt"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

// verifyContent checks that a fetched blob hashes to the content hash it
// was requested under. Every backend runs it before returning data, so a
// corrupted or substituted blob can never reach a creation request.
func verifyContent(hash interfaces.ContentHash, data []byte) error {
	if got := oracle.HashContent(data); got != hash {
		return fmt.Errorf("%w: requested %s, got %s", interfaces.ErrContentHashMismatch, hash, got)
	}
	return nil
}
