package favorites_test

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/db/dbtest"
	"github.com/vasiliy-maslov/technova/internal/favorites"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	db, cleanup, err := dbtest.Mongo(context.Background(), "technova_favorites_test")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to test database")
	}
	testDB = db

	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupStore(t *testing.T) favorites.RemoteStore {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_MONGO_URI is not set")
	}
	require.NoError(t, testDB.Collection("favorites").Drop(context.Background()))
	return favorites.NewMongoStore(testDB)
}

func TestMongoStore_AddIsASet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	ids, err := store.List(ctx, "uid-1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Add(ctx, "uid-1", "A", "B"))
	require.NoError(t, store.Add(ctx, "uid-1", "B", "C"))
	require.NoError(t, store.Add(ctx, "uid-1"))

	ids, err = store.List(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, []catalog.ProductID{"A", "B", "C"}, ids)
}

func TestMongoStore_Remove(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, "uid-1", "A", "B"))

	require.NoError(t, store.Remove(ctx, "uid-1", "A"))
	require.NoError(t, store.Remove(ctx, "uid-1", "Z"))
	require.NoError(t, store.Remove(ctx, "uid-2", "A"), "unknown customer is a no-op")

	ids, err := store.List(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, []catalog.ProductID{"B"}, ids)

	ids, err = store.List(ctx, "uid-2")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
