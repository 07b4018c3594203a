package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

// IPFSBackend implements an artifact store on IPFS. IPFS addresses
// content by its own CID, so the backend keeps a process-local index from
// content hash to CID; blobs staged by another process must be re-staged
// or fetched through a different backend in a multi-backend setup.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string

	mu   sync.Mutex
	cids map[interfaces.ContentHash]string
}

// NewIPFSBackend creates an IPFS artifact store connected to the node at
// host:port.
func NewIPFSBackend(host, port string, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	return &IPFSBackend{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/", apiURL),
		cids:        make(map[interfaces.ContentHash]string),
	}, nil
}

// Store adds a blob to IPFS and indexes its CID under the blob's
// keccak256 hash. Returns ErrBackendUnavailable if the node is down.
func (b *IPFSBackend) Store(ctx context.Context, blob []byte) (interfaces.ContentHash, error) {
	hash := oracle.HashContent(blob)

	if !b.shell.IsUp() {
		return hash, interfaces.ErrBackendUnavailable
	}

	cid, err := b.shell.Add(bytes.NewReader(blob))
	if err != nil {
		return hash, fmt.Errorf("failed to add artifact to IPFS: %w", err)
	}

	b.mu.Lock()
	b.cids[hash] = cid
	b.mu.Unlock()

	b.log.Debug("stored artifact in IPFS",
		slog.String("cid", cid),
		slog.String("contentHash", hash.String()))
	return hash, nil
}

// Fetch retrieves a blob by content hash via its indexed CID.
func (b *IPFSBackend) Fetch(ctx context.Context, hash interfaces.ContentHash) ([]byte, error) {
	b.mu.Lock()
	cid, known := b.cids[hash]
	b.mu.Unlock()
	if !known {
		return nil, interfaces.ErrContentNotFound
	}

	if !b.shell.IsUp() {
		return nil, interfaces.ErrBackendUnavailable
	}

	reader, err := b.shell.Cat("/ipfs/" + cid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artifact from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact from IPFS: %w", err)
	}

	if err := verifyContent(hash, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}
