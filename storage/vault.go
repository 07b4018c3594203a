package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	vault "github.com/hashicorp/vault/api"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

// VaultBackend implements an artifact store on a HashiCorp Vault KV v2
// mount. Useful when staged content carries encoded constructor secrets
// that should not sit in object storage. Authentication follows the
// standard Vault environment (VAULT_TOKEN and friends).
type VaultBackend struct {
	client      *vault.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultBackend creates a Vault artifact store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount (e.g. "secret")
//   - dataPath: path within the mount (e.g. "creation-registry")
func NewVaultBackend(address, mountPath, dataPath string, log *slog.Logger) (*VaultBackend, error) {
	config := vault.DefaultConfig()
	config.Address = address

	client, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	mountPath = strings.Trim(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultBackend{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", address, mountPath, dataPath),
	}, nil
}

// Store saves a blob under its keccak256 hash and returns the hash.
func (b *VaultBackend) Store(ctx context.Context, blob []byte) (interfaces.ContentHash, error) {
	hash := oracle.HashContent(blob)

	_, err := b.client.Logical().WriteWithContext(ctx, b.secretPath(hash), map[string]interface{}{
		"data": map[string]interface{}{
			"blob": base64.StdEncoding.EncodeToString(blob),
		},
	})
	if err != nil {
		return hash, fmt.Errorf("failed to write artifact to Vault: %w", err)
	}

	b.log.Debug("stored artifact in Vault",
		slog.String("contentHash", hash.String()),
		slog.Int("size", len(blob)))
	return hash, nil
}

// Fetch retrieves a blob by content hash.
func (b *VaultBackend) Fetch(ctx context.Context, hash interfaces.ContentHash) ([]byte, error) {
	secret, err := b.client.Logical().ReadWithContext(ctx, b.secretPath(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact from Vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, interfaces.ErrContentNotFound
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}
	encoded, ok := data["blob"].(string)
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact from Vault: %w", err)
	}

	if err := verifyContent(hash, blob); err != nil {
		return nil, err
	}
	return blob, nil
}

// Available checks if the Vault server is reachable and unsealed.
func (b *VaultBackend) Available(ctx context.Context) bool {
	health, err := b.client.Sys().HealthWithContext(ctx)
	return err == nil && health.Initialized && !health.Sealed
}

// Name returns a unique identifier for this backend.
func (b *VaultBackend) Name() string {
	return fmt.Sprintf("vault-%s-%s", b.mountPath, b.dataPath)
}

// LocationURI returns the URI that identifies this backend.
func (b *VaultBackend) LocationURI() string {
	return b.locationURI
}

func (b *VaultBackend) secretPath(hash interfaces.ContentHash) string {
	return fmt.Sprintf("%s/data/%s/%s", b.mountPath, b.dataPath, hash.String())
}
