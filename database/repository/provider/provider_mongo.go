package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo creates a new instance of ProviderRepository using MongoDB.
func NewMongoProviderRepo(db *mongo.Database) (*MongoProviderRepo, error) {
	repo := &MongoProviderRepo{coll: db.Collection("providers")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.ProviderCatalogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var provider models.ProviderCatalogEntry
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&provider)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider with id %s: %w", id, err)
	}
	return &provider, nil
}

// FindActiveByService matches the service name as an array element, which is an
// exact string comparison. Near-miss names are deliberately not matched.
func (r *MongoProviderRepo) FindActiveByService(ctx context.Context, serviceName string) ([]models.ProviderCatalogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"services": serviceName,
		"active":   true,
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find providers for service %s: %w", serviceName, err)
	}
	defer cursor.Close(ctx)

	var providers []models.ProviderCatalogEntry
	for cursor.Next(ctx) {
		var p models.ProviderCatalogEntry
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode provider: %w", err)
		}
		providers = append(providers, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("provider cursor error: %w", err)
	}
	return providers, nil
}
