package order_test

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vasiliy-maslov/technova/internal/db/dbtest"
	"github.com/vasiliy-maslov/technova/internal/order"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	db, cleanup, err := dbtest.Mongo(context.Background(), "technova_order_test")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to test database")
	}
	testDB = db

	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupStore(t *testing.T) order.RemoteStore {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_MONGO_URI is not set")
	}
	require.NoError(t, testDB.Collection("customer_orders").Drop(context.Background()))
	return order.NewMongoStore(testDB)
}

func TestMongoStore_ListByCustomerNewestFirst(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	placed := []order.Order{
		{ID: "ORD-100001", CustomerID: "uid-1", CustomerName: "Ana", Total: 19.99, Status: order.StatusPending, PaymentMethod: order.PaymentStripe, Date: "2025-03-01T10:00:00Z"},
		{ID: "ORD-100002", CustomerID: "uid-1", CustomerName: "Ana", Total: 9.99, Status: order.StatusPaid, PaymentMethod: order.PaymentPayPal, Date: "2025-03-02T10:00:00Z"},
		{ID: "ORD-100003", CustomerID: "uid-2", CustomerName: "Bo", Total: 5, Status: order.StatusPending, PaymentMethod: order.PaymentStripe, Date: "2025-03-03T10:00:00Z"},
	}
	for i := range placed {
		require.NoError(t, store.Create(ctx, &placed[i]))
	}

	orders, err := store.ListByCustomer(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-100002", orders[0].ID)
	assert.Equal(t, order.StatusPaid, orders[0].Status)
	assert.Equal(t, "ORD-100001", orders[1].ID)

	orders, err = store.ListByCustomer(ctx, "uid-3")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}
