package favorites_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/favorites"
	"github.com/vasiliy-maslov/technova/internal/kvstore"
	"github.com/vasiliy-maslov/technova/internal/session"
)

type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) List(ctx context.Context, customerID string) ([]catalog.ProductID, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductID), args.Error(1)
}

func (m *MockRemoteStore) Add(ctx context.Context, customerID string, ids ...catalog.ProductID) error {
	return m.Called(ctx, customerID, ids).Error(0)
}

func (m *MockRemoteStore) Remove(ctx context.Context, customerID string, id catalog.ProductID) error {
	return m.Called(ctx, customerID, id).Error(0)
}

func TestFavorites_AnonymousToggle(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	remote := new(MockRemoteStore)
	svc := favorites.NewService(backend, remote)
	owner := session.Owner{Scope: "s1"}

	added, err := svc.Toggle(ctx, owner, "A")
	require.NoError(t, err)
	assert.True(t, added)
	_, err = svc.Toggle(ctx, owner, "B")
	require.NoError(t, err)

	added, err = svc.Toggle(ctx, owner, "A")
	require.NoError(t, err)
	assert.False(t, added)

	ids, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []catalog.ProductID{"B"}, ids)

	stored, err := backend.Get(ctx, "s1", kvstore.KeyFavorites)
	require.NoError(t, err)
	assert.JSONEq(t, `["B"]`, string(stored))

	remote.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestFavorites_MergeOnSignIn(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	remote := new(MockRemoteStore)
	svc := favorites.NewService(backend, remote)
	anonymous := session.Owner{Scope: "s1"}
	customer := session.Owner{Scope: "s1", CustomerID: "uid-1"}

	for _, id := range []catalog.ProductID{"A", "B"} {
		_, err := svc.Toggle(ctx, anonymous, id)
		require.NoError(t, err)
	}

	remote.On("List", mock.Anything, "uid-1").Return([]catalog.ProductID{"B", "C"}, nil).Once()
	remote.On("Add", mock.Anything, "uid-1", []catalog.ProductID{"A"}).Return(nil).Once()

	merged, err := svc.Merge(ctx, customer)

	require.NoError(t, err)
	assert.ElementsMatch(t, []catalog.ProductID{"A", "B", "C"}, merged)

	_, err = backend.Get(ctx, "s1", kvstore.KeyFavorites)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	ids, err := svc.List(ctx, customer)
	require.NoError(t, err)
	assert.ElementsMatch(t, []catalog.ProductID{"A", "B", "C"}, ids)
	remote.AssertExpectations(t)
}

func TestFavorites_MergeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	remote := new(MockRemoteStore)
	svc := favorites.NewService(kvstore.NewMemoryBackend(), remote)
	customer := session.Owner{Scope: "s1", CustomerID: "uid-1"}

	remote.On("List", mock.Anything, "uid-1").Return([]catalog.ProductID{"C"}, nil).Twice()

	first, err := svc.Merge(ctx, customer)
	require.NoError(t, err)
	second, err := svc.Merge(ctx, customer)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	remote.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestFavorites_AuthenticatedToggleIsOptimistic(t *testing.T) {
	ctx := context.Background()
	remote := new(MockRemoteStore)
	svc := favorites.NewService(kvstore.NewMemoryBackend(), remote)
	customer := session.Owner{Scope: "s1", CustomerID: "uid-1"}

	remote.On("List", mock.Anything, "uid-1").Return([]catalog.ProductID{"C"}, nil).Once()
	remote.On("Add", mock.Anything, "uid-1", []catalog.ProductID{"D"}).Return(errors.New("network")).Once()
	remote.On("Remove", mock.Anything, "uid-1", catalog.ProductID("C")).Return(errors.New("network")).Once()

	added, err := svc.Toggle(ctx, customer, "D")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Toggle(ctx, customer, "C")
	require.NoError(t, err)
	assert.False(t, added)

	ids, err := svc.List(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, []catalog.ProductID{"D"}, ids)
	remote.AssertExpectations(t)
}

func TestFavorites_RemoteListFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	remote := new(MockRemoteStore)
	svc := favorites.NewService(backend, remote)
	customer := session.Owner{Scope: "s1", CustomerID: "uid-1"}
	_, err := svc.Toggle(ctx, session.Owner{Scope: "s1"}, "A")
	require.NoError(t, err)

	remote.On("List", mock.Anything, "uid-1").Return(nil, errors.New("timeout")).Once()

	merged, err := svc.Merge(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, []catalog.ProductID{"A"}, merged)

	_, err = backend.Get(ctx, "s1", kvstore.KeyFavorites)
	require.NoError(t, err, "local favorites survive until they are uploaded")

	remote.On("List", mock.Anything, "uid-1").Return([]catalog.ProductID{"B", "C"}, nil).Once()
	remote.On("Add", mock.Anything, "uid-1", []catalog.ProductID{"A"}).Return(nil).Once()

	ids, err := svc.List(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, []catalog.ProductID{"B", "C", "A"}, ids)

	_, err = backend.Get(ctx, "s1", kvstore.KeyFavorites)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
	remote.AssertExpectations(t)
}

func TestFavorites_UploadFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	remote := new(MockRemoteStore)
	svc := favorites.NewService(backend, remote)
	_, err := svc.Toggle(ctx, session.Owner{Scope: "s1"}, "A")
	require.NoError(t, err)

	remote.On("List", mock.Anything, "uid-1").Return([]catalog.ProductID{"B"}, nil).Once()
	remote.On("Add", mock.Anything, "uid-1", []catalog.ProductID{"A"}).Return(errors.New("timeout")).Once()

	merged, err := svc.Merge(ctx, session.Owner{Scope: "s1", CustomerID: "uid-1"})
	require.NoError(t, err)
	assert.Equal(t, []catalog.ProductID{"B", "A"}, merged)

	stored, err := backend.Get(ctx, "s1", kvstore.KeyFavorites)
	require.NoError(t, err)
	assert.JSONEq(t, `["A"]`, string(stored))
	remote.AssertExpectations(t)
}

func TestFavorites_ToggleWhileRemoteDown(t *testing.T) {
	ctx := context.Background()
	remote := new(MockRemoteStore)
	svc := favorites.NewService(kvstore.NewMemoryBackend(), remote)
	customer := session.Owner{Scope: "s1", CustomerID: "uid-1"}

	remote.On("List", mock.Anything, "uid-1").Return(nil, errors.New("timeout")).Once()
	remote.On("Add", mock.Anything, "uid-1", []catalog.ProductID{"A"}).Return(errors.New("timeout")).Once()

	_, err := svc.Toggle(ctx, customer, "A")
	assert.Error(t, err)

	remote.On("List", mock.Anything, "uid-1").Return([]catalog.ProductID{"A"}, nil).Once()
	ids, err := svc.List(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, []catalog.ProductID{"A"}, ids)
}

func TestFavorites_ForgetReloads(t *testing.T) {
	ctx := context.Background()
	remote := new(MockRemoteStore)
	svc := favorites.NewService(kvstore.NewMemoryBackend(), remote)
	customer := session.Owner{Scope: "s1", CustomerID: "uid-1"}

	remote.On("List", mock.Anything, "uid-1").Return([]catalog.ProductID{"C"}, nil).Twice()

	_, err := svc.List(ctx, customer)
	require.NoError(t, err)
	svc.Forget("uid-1")
	_, err = svc.List(ctx, customer)
	require.NoError(t, err)

	remote.AssertExpectations(t)
}
