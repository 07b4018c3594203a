package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/oracle"
)

// MockArtifactStore implements interfaces.ArtifactStore for testing
type MockArtifactStore struct {
	mock.Mock
	name string
}

func (m *MockArtifactStore) Store(ctx context.Context, blob []byte) (interfaces.ContentHash, error) {
	args := m.Called(ctx, blob)
	return args.Get(0).(interfaces.ContentHash), args.Error(1)
}

func (m *MockArtifactStore) Fetch(ctx context.Context, hash interfaces.ContentHash) ([]byte, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockArtifactStore) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockArtifactStore) Name() string {
	return m.name
}

func (m *MockArtifactStore) LocationURI() string {
	return "mock:"
}

func TestMultiBackend_Available(t *testing.T) {
	tests := []struct {
		name     string
		backends []bool
		expected bool
	}{
		{name: "all available", backends: []bool{true, true}, expected: true},
		{name: "some available", backends: []bool{false, true, false}, expected: true},
		{name: "none available", backends: []bool{false, false}, expected: false},
		{name: "no backends", backends: []bool{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var backends []interfaces.ArtifactStore
			for i, available := range tt.backends {
				store := &MockArtifactStore{name: fmt.Sprintf("mock-%d", i)}
				store.On("Available", mock.Anything).Return(available).Maybe()
				backends = append(backends, store)
			}

			multi := NewMultiBackend(backends, testLogger())
			assert.Equal(t, tt.expected, multi.Available(context.Background()))
		})
	}
}

func TestMultiBackend_FetchFallsBack(t *testing.T) {
	blob := []byte("staged artifact")
	hash := oracle.HashContent(blob)

	failing := &MockArtifactStore{name: "failing"}
	failing.On("Available", mock.Anything).Return(true)
	failing.On("Fetch", mock.Anything, hash).Return(nil, interfaces.ErrContentNotFound)

	healthy := &MockArtifactStore{name: "healthy"}
	healthy.On("Available", mock.Anything).Return(true)
	healthy.On("Fetch", mock.Anything, hash).Return(blob, nil)

	multi := NewMultiBackend([]interfaces.ArtifactStore{failing, healthy}, testLogger())

	data, err := multi.Fetch(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, blob, data)
	failing.AssertExpectations(t)
	healthy.AssertExpectations(t)
}

func TestMultiBackend_FetchAllFail(t *testing.T) {
	hash := oracle.HashContent([]byte("missing"))

	down := &MockArtifactStore{name: "down"}
	down.On("Available", mock.Anything).Return(false)

	empty := &MockArtifactStore{name: "empty"}
	empty.On("Available", mock.Anything).Return(true)
	empty.On("Fetch", mock.Anything, hash).Return(nil, interfaces.ErrContentNotFound)

	multi := NewMultiBackend([]interfaces.ArtifactStore{down, empty}, testLogger())

	_, err := multi.Fetch(context.Background(), hash)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound,
		"the not-found sentinel must survive aggregation so callers can map it")
}

func TestMultiBackend_FetchNoneAvailable(t *testing.T) {
	hash := oracle.HashContent([]byte("unreachable"))

	down := &MockArtifactStore{name: "down"}
	down.On("Available", mock.Anything).Return(false)

	multi := NewMultiBackend([]interfaces.ArtifactStore{down}, testLogger())

	_, err := multi.Fetch(context.Background(), hash)
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
}

func TestMultiBackend_StoreWritesToAllAvailable(t *testing.T) {
	blob := []byte("replicated artifact")
	hash := oracle.HashContent(blob)

	first := &MockArtifactStore{name: "first"}
	first.On("Available", mock.Anything).Return(true)
	first.On("Store", mock.Anything, blob).Return(hash, nil)

	second := &MockArtifactStore{name: "second"}
	second.On("Available", mock.Anything).Return(true)
	second.On("Store", mock.Anything, blob).Return(hash, nil)

	multi := NewMultiBackend([]interfaces.ArtifactStore{first, second}, testLogger())

	got, err := multi.Store(context.Background(), blob)
	require.NoError(t, err)
	assert.Equal(t, hash, got)
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestMultiBackend_StorePartialFailure(t *testing.T) {
	blob := []byte("partially replicated")
	hash := oracle.HashContent(blob)

	broken := &MockArtifactStore{name: "broken"}
	broken.On("Available", mock.Anything).Return(true)
	broken.On("Store", mock.Anything, blob).Return(interfaces.ContentHash{}, errors.New("disk full"))

	healthy := &MockArtifactStore{name: "healthy"}
	healthy.On("Available", mock.Anything).Return(true)
	healthy.On("Store", mock.Anything, blob).Return(hash, nil)

	multi := NewMultiBackend([]interfaces.ArtifactStore{broken, healthy}, testLogger())

	got, err := multi.Store(context.Background(), blob)
	require.NoError(t, err, "one successful backend is enough")
	assert.Equal(t, hash, got)
}

func TestFactory_Schemes(t *testing.T) {
	factory := NewFactory(testLogger())

	fileStore, err := factory.BackendFor("file://" + t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, fileStore)

	ipfsStore, err := factory.BackendFor("ipfs://127.0.0.1:5001")
	require.NoError(t, err)
	assert.IsType(t, &IPFSBackend{}, ipfsStore)

	s3Store, err := factory.BackendFor("s3://bucket/staging?region=eu-west-1")
	require.NoError(t, err)
	assert.IsType(t, &S3Backend{}, s3Store)

	vaultStore, err := factory.BackendFor("vault://vault.local:8200/secret/creation-registry")
	require.NoError(t, err)
	assert.IsType(t, &VaultBackend{}, vaultStore)

	_, err = factory.BackendFor("ftp://nope")
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestFactory_MultiBackendSkipsInvalid(t *testing.T) {
	factory := NewFactory(testLogger())

	multi, err := factory.MultiBackendFor([]string{
		"file://" + t.TempDir(),
		"ftp://invalid",
	})
	require.NoError(t, err)
	assert.Contains(t, multi.Name(), "file-")

	_, err = factory.MultiBackendFor([]string{"ftp://invalid"})
	assert.Error(t, err)
}
