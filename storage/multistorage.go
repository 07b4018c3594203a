package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

// MultiBackend aggregates several artifact stores. Store writes to every
// available backend for redundancy; Fetch returns from the first backend
// that has the content.
type MultiBackend struct {
	backends []interfaces.ArtifactStore
	log      *slog.Logger
}

// NewMultiBackend creates a multi-store over the given backends.
func NewMultiBackend(backends []interfaces.ArtifactStore, log *slog.Logger) *MultiBackend {
	if log == nil {
		log = slog.Default()
	}
	return &MultiBackend{backends: backends, log: log}
}

// Store saves the blob to all available backends. It succeeds if at least
// one backend accepted the blob.
func (m *MultiBackend) Store(ctx context.Context, blob []byte) (interfaces.ContentHash, error) {
	hash := oracle.HashContent(blob)
	var stored int
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("backend unavailable", slog.String("backend", backend.Name()))
			continue
		}

		if _, err := backend.Store(ctx, blob); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Warn("failed to store artifact",
				slog.String("backend", backend.Name()),
				slog.String("contentHash", hash.String()),
				"err", err)
			continue
		}
		stored++
	}

	if stored == 0 {
		if len(errs) == 0 {
			return hash, fmt.Errorf("no backend available to store artifact %s: %w", hash, interfaces.ErrBackendUnavailable)
		}
		return hash, fmt.Errorf("no backend stored artifact %s: %w", hash, errors.Join(errs...))
	}

	m.log.Info("stored artifact",
		slog.String("contentHash", hash.String()),
		slog.Int("backends", stored))
	return hash, nil
}

// Fetch retrieves a blob from the first backend that has it.
func (m *MultiBackend) Fetch(ctx context.Context, hash interfaces.ContentHash) ([]byte, error) {
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			continue
		}

		data, err := backend.Fetch(ctx, hash)
		if err == nil {
			return data, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("no backend available to fetch %s: %w", hash, interfaces.ErrBackendUnavailable)
	}
	return nil, fmt.Errorf("all backends failed to fetch %s: %w", hash, errors.Join(errs...))
}

// Available reports whether any backend is reachable.
func (m *MultiBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns a unique identifier for this backend.
func (m *MultiBackend) Name() string {
	names := make([]string, 0, len(m.backends))
	for _, backend := range m.backends {
		names = append(names, backend.Name())
	}
	return "multi[" + strings.Join(names, ",") + "]"
}

// LocationURI returns the URIs of the aggregated backends.
func (m *MultiBackend) LocationURI() string {
	uris := make([]string, 0, len(m.backends))
	for _, backend := range m.backends {
		uris = append(uris, backend.LocationURI())
	}
	return strings.Join(uris, ",")
}
