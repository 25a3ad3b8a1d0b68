package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RemoteStore holds carts of signed-in customers.
type RemoteStore interface {
	Get(ctx context.Context, customerID string) ([]LineItem, error)
	Save(ctx context.Context, customerID string, items []LineItem) error
	Clear(ctx context.Context, customerID string) error
}

type cartDocument struct {
	CustomerID string     `bson:"_id"`
	Items      []LineItem `bson:"items"`
	UpdatedAt  time.Time  `bson:"updatedAt"`
}

type mongoStore struct {
	carts *mongo.Collection
}

func NewMongoStore(db *mongo.Database) RemoteStore {
	return &mongoStore{carts: db.Collection("carts")}
}

func (s *mongoStore) Get(ctx context.Context, customerID string) ([]LineItem, error) {
	var doc cartDocument
	err := s.carts.FindOne(ctx, bson.M{"_id": customerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []LineItem{}, nil
		}
		return nil, fmt.Errorf("repository: failed to get cart of %s: %w", customerID, err)
	}

	if doc.Items == nil {
		doc.Items = []LineItem{}
	}

	return doc.Items, nil
}

func (s *mongoStore) Save(ctx context.Context, customerID string, items []LineItem) error {
	update := bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now().UTC()}}

	_, err := s.carts.UpdateByID(ctx, customerID, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("repository: failed to save cart of %s: %w", customerID, err)
	}

	return nil
}

func (s *mongoStore) Clear(ctx context.Context, customerID string) error {
	if _, err := s.carts.DeleteOne(ctx, bson.M{"_id": customerID}); err != nil {
		return fmt.Errorf("repository: failed to clear cart of %s: %w", customerID, err)
	}

	return nil
}
