package httpserver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
)

// SignatureHeader carries the hex-encoded 65-byte recoverable ECDSA
// signature over keccak256 of the request body. The recovered signing key
// determines the caller identity; there is no separate identity header to
// lie in.
const SignatureHeader = "X-Registry-Signature"

var errMissingSignature = errors.New("missing signature header")

// recoverCaller derives the caller identity from the request signature.
func recoverCaller(r *http.Request, body []byte) (interfaces.Identity, error) {
	sigHex := r.Header.Get(SignatureHeader)
	if sigHex == "" {
		return interfaces.Identity{}, errMissingSignature
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("malformed signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return interfaces.Identity{}, fmt.Errorf("invalid signature length %d", len(sig))
	}

	pubkey, err := crypto.SigToPub(crypto.Keccak256(body), sig)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("signature recovery failed: %w", err)
	}

	return interfaces.Identity(crypto.PubkeyToAddress(*pubkey)), nil
}
