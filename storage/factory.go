package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
)

// Factory creates artifact stores from URI strings and assembles
// multi-backend configurations for redundant staging.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a factory using the given logger for the backends it
// produces.
func NewFactory(log *slog.Logger) *Factory {
	return &Factory{log: log}
}

// BackendFor creates an artifact store from a location URI.
//
// Supported schemes:
//   - file:///path for the local filesystem
//   - s3://bucket/prefix?region=..&endpoint=..&access-key=..&secret-key=.. for S3 or compatible
//   - ipfs://host:port for an IPFS node
//   - vault://host:port/mount/path for HashiCorp Vault KV v2
func (f *Factory) BackendFor(locationURI string) (interfaces.ArtifactStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return NewFileBackend(u.Path, f.log)

	case "s3":
		q := u.Query()
		region := q.Get("region")
		if region == "" {
			region = "us-east-1"
		}
		prefix := strings.Trim(u.Path, "/")
		return NewS3Backend(u.Host, prefix, region, q.Get("endpoint"), q.Get("access-key"), q.Get("secret-key"), f.log)

	case "ipfs":
		port := u.Port()
		if port == "" {
			port = "5001"
		}
		return NewIPFSBackend(u.Hostname(), port, f.log)

	case "vault":
		parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: vault URI requires /mount/path", interfaces.ErrInvalidLocationURI)
		}
		// Vault talks HTTP(S); the URI scheme only selects the backend type.
		return NewVaultBackend("https://"+u.Host, parts[0], parts[1], f.log)

	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// MultiBackendFor creates a multi-store from a list of location URIs,
// skipping URIs that fail to construct. Returns an error if none succeed.
func (f *Factory) MultiBackendFor(locationURIs []string) (interfaces.ArtifactStore, error) {
	backends := make([]interfaces.ArtifactStore, 0, len(locationURIs))

	for _, uri := range locationURIs {
		backend, err := f.BackendFor(uri)
		if err != nil {
			f.log.Warn("failed to create artifact store",
				slog.String("locationURI", uri),
				"err", err)
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid artifact store among %d URIs", len(locationURIs))
	}
	return NewMultiBackend(backends, f.log), nil
}
