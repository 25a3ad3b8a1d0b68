package favorites

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vasiliy-maslov/technova/internal/catalog"
)

type RemoteStore interface {
	List(ctx context.Context, customerID string) ([]catalog.ProductID, error)
	Add(ctx context.Context, customerID string, ids ...catalog.ProductID) error
	Remove(ctx context.Context, customerID string, id catalog.ProductID) error
}

type favoritesDocument struct {
	CustomerID string              `bson:"_id"`
	ProductIDs []catalog.ProductID `bson:"productIds"`
}

type mongoStore struct {
	favorites *mongo.Collection
}

func NewMongoStore(db *mongo.Database) RemoteStore {
	return &mongoStore{favorites: db.Collection("favorites")}
}

func (s *mongoStore) List(ctx context.Context, customerID string) ([]catalog.ProductID, error) {
	var doc favoritesDocument
	err := s.favorites.FindOne(ctx, bson.M{"_id": customerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []catalog.ProductID{}, nil
		}
		return nil, fmt.Errorf("repository: failed to get favorites of %s: %w", customerID, err)
	}

	return doc.ProductIDs, nil
}

func (s *mongoStore) Add(ctx context.Context, customerID string, ids ...catalog.ProductID) error {
	if len(ids) == 0 {
		return nil
	}

	update := bson.M{"$addToSet": bson.M{"productIds": bson.M{"$each": ids}}}
	if _, err := s.favorites.UpdateByID(ctx, customerID, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("repository: failed to add favorites of %s: %w", customerID, err)
	}

	return nil
}

func (s *mongoStore) Remove(ctx context.Context, customerID string, id catalog.ProductID) error {
	update := bson.M{"$pull": bson.M{"productIds": id}}
	if _, err := s.favorites.UpdateByID(ctx, customerID, update); err != nil {
		return fmt.Errorf("repository: failed to remove favorite of %s: %w", customerID, err)
	}

	return nil
}
