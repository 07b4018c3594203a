package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

// FileBackend implements an artifact store on the local file system.
// Blobs live under <baseDir>/artifacts/<hex content hash>.
type FileBackend struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a file-based artifact store rooted at baseDir,
// creating the directory structure if needed.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "artifacts"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	return &FileBackend{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Store saves a blob under its keccak256 hash and returns the hash.
func (b *FileBackend) Store(ctx context.Context, blob []byte) (interfaces.ContentHash, error) {
	hash := oracle.HashContent(blob)
	path := b.blobPath(hash)

	if err := os.WriteFile(path, blob, 0644); err != nil {
		return hash, fmt.Errorf("failed to write artifact: %w", err)
	}

	b.log.Debug("stored artifact",
		slog.String("path", path),
		slog.Int("size", len(blob)))
	return hash, nil
}

// Fetch retrieves a blob by content hash. Returns ErrContentNotFound if
// no such blob has been staged.
func (b *FileBackend) Fetch(ctx context.Context, hash interfaces.ContentHash) ([]byte, error) {
	path := b.blobPath(hash)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, interfaces.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	if err := verifyContent(hash, data); err != nil {
		return nil, err
	}

	b.log.Debug("fetched artifact",
		slog.String("path", path),
		slog.Int("size", len(data)))
	return data, nil
}

// Available reports whether the base directory is accessible.
func (b *FileBackend) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	return err == nil
}

// Name returns a unique identifier for this backend.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", b.baseDir)
}

// LocationURI returns the URI that identifies this backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

func (b *FileBackend) blobPath(hash interfaces.ContentHash) string {
	return filepath.Join(b.baseDir, "artifacts", hash.String())
}
