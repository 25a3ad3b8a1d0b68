package customer

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProfileRepository interface {
	Get(ctx context.Context, id string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
}

// AddressRepository stores addresses one document each, keyed by customer.
type AddressRepository interface {
	List(ctx context.Context, customerID string) ([]Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, customerID, id string) error
	SetDefault(ctx context.Context, customerID, id string) error
}

type mongoProfiles struct {
	customers *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) ProfileRepository {
	return &mongoProfiles{customers: db.Collection("customers")}
}

func (r *mongoProfiles) Get(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	if err := r.customers.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select customer %s: %w", id, err)
	}
	return &c, nil
}

func (r *mongoProfiles) Create(ctx context.Context, c *Customer) error {
	if _, err := r.customers.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("repository: failed to insert customer %s: %w", c.ID, err)
	}
	return nil
}

func (r *mongoProfiles) Update(ctx context.Context, c *Customer) error {
	update := bson.M{"$set": bson.M{
		"displayName": c.DisplayName,
		"phone":       c.Phone,
		"updatedAt":   c.UpdatedAt,
	}}

	result, err := r.customers.UpdateByID(ctx, c.ID, update)
	if err != nil {
		return fmt.Errorf("repository: failed to update customer %s: %w", c.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoAddresses struct {
	addresses *mongo.Collection
}

func NewAddressRepository(db *mongo.Database) AddressRepository {
	return &mongoAddresses{addresses: db.Collection("addresses")}
}

func (r *mongoAddresses) List(ctx context.Context, customerID string) ([]Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.addresses.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query addresses of %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	addresses := make([]Address, 0)
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, fmt.Errorf("repository: failed to decode addresses of %s: %w", customerID, err)
	}
	return addresses, nil
}

func (r *mongoAddresses) Create(ctx context.Context, a *Address) error {
	if _, err := r.addresses.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("repository: failed to insert address %s: %w", a.ID, err)
	}
	return nil
}

func (r *mongoAddresses) Update(ctx context.Context, a *Address) error {
	filter := bson.M{"_id": a.ID, "customerId": a.CustomerID}
	update := bson.M{"$set": bson.M{
		"label":      a.Label,
		"fullName":   a.FullName,
		"street":     a.Street,
		"city":       a.City,
		"postalCode": a.PostalCode,
		"country":    a.Country,
		"phone":      a.Phone,
		"isDefault":  a.IsDefault,
	}}

	result, err := r.addresses.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("repository: failed to update address %s: %w", a.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *mongoAddresses) Delete(ctx context.Context, customerID, id string) error {
	result, err := r.addresses.DeleteOne(ctx, bson.M{"_id": id, "customerId": customerID})
	if err != nil {
		return fmt.Errorf("repository: failed to delete address %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrAddressNotFound
	}
	return nil
}

// SetDefault flags one address and clears the flag on every other address of
// the same customer.
func (r *mongoAddresses) SetDefault(ctx context.Context, customerID, id string) error {
	result, err := r.addresses.UpdateOne(ctx,
		bson.M{"_id": id, "customerId": customerID},
		bson.M{"$set": bson.M{"isDefault": true}},
	)
	if err != nil {
		return fmt.Errorf("repository: failed to set default address %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrAddressNotFound
	}

	_, err = r.addresses.UpdateMany(ctx,
		bson.M{"customerId": customerID, "_id": bson.M{"$ne": id}},
		bson.M{"$set": bson.M{"isDefault": false}},
	)
	if err != nil {
		return fmt.Errorf("repository: failed to clear default addresses of %s: %w", customerID, err)
	}
	return nil
}
