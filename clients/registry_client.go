// Package clients provides typed HTTP clients for the registry API. The
// RegistryClient signs request bodies with an ECDSA key; the server
// recovers the caller identity from the signature, so the key determines
// the role the client can exercise (owner, nominee, or allowed actor).
package clients

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ruteri/deterministic-creation-registry/httpserver"
	"github.com/ruteri/deterministic-creation-registry/interfaces"
)

// RegistryClient talks to a registry server.
type RegistryClient struct {
	baseURL    string
	privateKey *ecdsa.PrivateKey
	httpClient *http.Client
}

// NewRegistryClient creates a client for the registry API at baseURL. The
// private key is optional for public endpoints; signed endpoints fail
// without one.
func NewRegistryClient(baseURL string, privateKey *ecdsa.PrivateKey, timeout ...time.Duration) *RegistryClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &RegistryClient{
		baseURL:    baseURL,
		privateKey: privateKey,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// CallerIdentity returns the identity the client's key signs as.
func (c *RegistryClient) CallerIdentity() (interfaces.Identity, error) {
	if c.privateKey == nil {
		return interfaces.Identity{}, fmt.Errorf("no signing key configured")
	}
	return interfaces.Identity(crypto.PubkeyToAddress(c.privateKey.PublicKey)), nil
}

// SetAllowedActor rotates the allowed actor. Owner key required.
func (c *RegistryClient) SetAllowedActor(newActor interfaces.Identity) error {
	_, err := c.postSigned("/api/admin/allowed-actor", httpserver.SetAllowedActorRequest{NewActor: newActor})
	return err
}

// TransferOwnership nominates a successor. Owner key required.
func (c *RegistryClient) TransferOwnership(nominee interfaces.Identity) error {
	_, err := c.postSigned("/api/admin/transfer-ownership", httpserver.TransferOwnershipRequest{Nominee: nominee})
	return err
}

// AcceptOwnership completes the handshake. Nominee key required.
func (c *RegistryClient) AcceptOwnership() error {
	_, err := c.postSigned("/api/admin/accept-ownership", struct{}{})
	return err
}

// Create requests creation of content under the given salt and returns
// the realized location. Allowed-actor key required.
func (c *RegistryClient) Create(salt interfaces.Salt, content []byte) (httpserver.CreateResponse, error) {
	var resp httpserver.CreateResponse
	body, err := c.postSigned("/api/create", httpserver.CreateRequest{Salt: salt, Content: content})
	if err != nil {
		return resp, err
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("failed to parse create response: %w", err)
	}
	return resp, nil
}

// CreateFromHash requests creation of a blob previously staged in the
// server's artifact store.
func (c *RegistryClient) CreateFromHash(salt interfaces.Salt, contentHash interfaces.ContentHash) (httpserver.CreateResponse, error) {
	var resp httpserver.CreateResponse
	body, err := c.postSigned("/api/create", httpserver.CreateRequest{Salt: salt, ContentHash: contentHash.String()})
	if err != nil {
		return resp, err
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("failed to parse create response: %w", err)
	}
	return resp, nil
}

// ComputeLocation asks the server to derive a target location.
func (c *RegistryClient) ComputeLocation(salt interfaces.Salt, contentHash interfaces.ContentHash) (interfaces.Identity, error) {
	query := url.Values{}
	query.Set("salt", salt.String())
	query.Set("content_hash", contentHash.String())

	reqURL := fmt.Sprintf("%s/api/public/compute-location?%s", c.baseURL, query.Encode())
	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("compute-location request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.checkResponse(resp)
	if err != nil {
		return interfaces.Identity{}, err
	}

	var parsed struct {
		Location interfaces.Identity `json:"location"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return interfaces.Identity{}, fmt.Errorf("failed to parse compute-location response: %w", err)
	}
	return parsed.Location, nil
}

// ContentHashOf asks the server to hash a blob.
func (c *RegistryClient) ContentHashOf(content []byte) (interfaces.ContentHash, error) {
	resp, err := c.httpClient.Post(c.baseURL+"/api/public/content-hash", "application/octet-stream", bytes.NewReader(content))
	if err != nil {
		return interfaces.ContentHash{}, fmt.Errorf("content-hash request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.checkResponse(resp)
	if err != nil {
		return interfaces.ContentHash{}, err
	}

	var parsed struct {
		ContentHash interfaces.ContentHash `json:"content_hash"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return interfaces.ContentHash{}, fmt.Errorf("failed to parse content-hash response: %w", err)
	}
	return parsed.ContentHash, nil
}

// AccessState fetches the current owner, pending owner, and allowed actor.
func (c *RegistryClient) AccessState() (httpserver.AccessStateResponse, error) {
	var parsed httpserver.AccessStateResponse

	resp, err := c.httpClient.Get(c.baseURL + "/api/public/access")
	if err != nil {
		return parsed, fmt.Errorf("access request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.checkResponse(resp)
	if err != nil {
		return parsed, err
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return parsed, fmt.Errorf("failed to parse access response: %w", err)
	}
	return parsed, nil
}

func (c *RegistryClient) postSigned(path string, payload interface{}) ([]byte, error) {
	if c.privateKey == nil {
		return nil, fmt.Errorf("no signing key configured for %s", path)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	signature, err := crypto.Sign(crypto.Keccak256(body), c.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(httpserver.SignatureHeader, hex.EncodeToString(signature))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	return c.checkResponse(resp)
}

func (c *RegistryClient) checkResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with code %d: %s", resp.StatusCode, string(bytes.TrimSpace(body)))
	}
	return body, nil
}
