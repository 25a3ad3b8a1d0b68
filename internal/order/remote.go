package order

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RemoteStore keeps orders placed by signed-in customers.
type RemoteStore interface {
	Create(ctx context.Context, order *Order) error
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
}

type mongoStore struct {
	orders *mongo.Collection
}

func NewMongoStore(db *mongo.Database) RemoteStore {
	return &mongoStore{orders: db.Collection("customer_orders")}
}

func (s *mongoStore) Create(ctx context.Context, order *Order) error {
	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("repository: failed to insert order %s: %w", order.ID, err)
	}

	return nil
}

func (s *mongoStore) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := s.orders.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders of %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	orders := make([]Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("repository: failed to decode orders of %s: %w", customerID, err)
	}

	return orders, nil
}
