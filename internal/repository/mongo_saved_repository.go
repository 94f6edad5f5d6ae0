package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Iamabhih/storefront-cart/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSavedRepository struct {
	saved *mongo.Collection
}

func NewMongoSavedRepository(db *mongo.Database) SavedCartRepository {
	return &mongoSavedRepository{
		saved: db.Collection("saved_carts"),
	}
}

func (m *mongoSavedRepository) Insert(ctx context.Context, saved *domain.SavedCart) error {
	_, err := m.saved.InsertOne(ctx, saved)
	if err != nil {
		return fmt.Errorf("failed to insert saved cart: %w", err)
	}
	return nil
}

func (m *mongoSavedRepository) List(ctx context.Context, userID string) ([]domain.SavedCart, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.saved.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved carts: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.SavedCart
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to read saved carts: %w", err)
	}
	return out, nil
}

func (m *mongoSavedRepository) Get(ctx context.Context, userID, id string) (*domain.SavedCart, error) {
	var saved domain.SavedCart

	filter := bson.M{"_id": id, "user_id": userID}
	err := m.saved.FindOne(ctx, filter).Decode(&saved)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSavedCartNotFound
		}
		return nil, fmt.Errorf("failed to get saved cart: %w", err)
	}

	return &saved, nil
}

// Delete is idempotent: deleting an absent snapshot is not an error.
func (m *mongoSavedRepository) Delete(ctx context.Context, userID, id string) error {
	filter := bson.M{"_id": id, "user_id": userID}

	if _, err := m.saved.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete saved cart: %w", err)
	}
	return nil
}

// CreateIndexes covers the per-user listing.
func (m *mongoSavedRepository) CreateIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	}

	_, err := m.saved.Indexes().CreateOne(ctx, index)
	if err != nil {
		return fmt.Errorf("failed to create saved cart indexes: %w", err)
	}
	return nil
}
