package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id ProductID) (*Product, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id ProductID) error
}

type mongoRepository struct {
	products *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{products: db.Collection("products")}
}

func (r *mongoRepository) List(ctx context.Context) ([]Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.products.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("repository: failed to decode products: %w", err)
	}

	return products, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id ProductID) (*Product, error) {
	var product Product
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product %s: %w", id, err)
	}

	return &product, nil
}

func (r *mongoRepository) Create(ctx context.Context, product *Product) error {
	if _, err := r.products.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("repository: failed to insert product %s: %w", product.ID, err)
	}

	return nil
}

func (r *mongoRepository) Update(ctx context.Context, product *Product) error {
	update := bson.M{"$set": bson.M{
		"name":             product.Name,
		"price":            product.Price,
		"originalPrice":    product.OriginalPrice,
		"category":         product.Category,
		"image":            product.Image,
		"description":      product.Description,
		"brand":            product.Brand,
		"compatibleModels": product.CompatibleModels,
		"isBundle":         product.IsBundle,
		"updatedAt":        product.UpdatedAt,
	}}

	result, err := r.products.UpdateByID(ctx, product.ID, update)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", product.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id ProductID) error {
	result, err := r.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
