package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileBackend_StoreFetch(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	blob := []byte("artifact template bytes")

	hash, err := backend.Store(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, oracle.HashContent(blob), hash)

	fetched, err := backend.Fetch(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, blob, fetched)

	assert.True(t, backend.Available(ctx))
}

func TestFileBackend_NotFound(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), testLogger())
	require.NoError(t, err)

	_, err = backend.Fetch(context.Background(), oracle.HashContent([]byte("never staged")))
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestFileBackend_DetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	hash, err := backend.Store(ctx, []byte("original"))
	require.NoError(t, err)

	// Corrupt the staged blob on disk.
	path := filepath.Join(dir, "artifacts", hash.String())
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0644))

	_, err = backend.Fetch(ctx, hash)
	assert.ErrorIs(t, err, interfaces.ErrContentHashMismatch)
}
