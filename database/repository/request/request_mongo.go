package requestRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRequestRepo implements RequestRepository using MongoDB.
type MongoRequestRepo struct {
	coll *mongo.Collection
}

func NewMongoRequestRepo(db *mongo.Database) (*MongoRequestRepo, error) {
	repo := &MongoRequestRepo{coll: db.Collection("resident_requests")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// One mirror per booking, even if two writers race to create it.
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "residentId", Value: 1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create resident request indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoRequestRepo) Create(ctx context.Context, req *models.ResidentRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("error creating resident request: %w", err)
	}
	return nil
}

func (r *MongoRequestRepo) GetByID(ctx context.Context, id string) (*models.ResidentRequest, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoRequestRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.ResidentRequest, error) {
	return r.findOne(ctx, bson.M{"bookingId": bookingID})
}

func (r *MongoRequestRepo) UpdateStatus(ctx context.Context, id string, update StatusUpdate) error {
	set := bson.M{"updatedAt": update.At}
	if update.Status != "" {
		set["status"] = update.Status
	}
	if update.ScheduledFor != "" {
		set["scheduledFor"] = update.ScheduledFor
	}
	if update.ProviderID != "" {
		set["providerId"] = update.ProviderID
	}
	if update.ProviderName != "" {
		set["providerName"] = update.ProviderName
	}
	return r.updateOne(ctx, id, bson.M{"$set": set})
}

func (r *MongoRequestRepo) SetNegotiation(ctx context.Context, id string, n *models.Negotiation, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"negotiation": n, "updatedAt": at}})
}

func (r *MongoRequestRepo) findOne(ctx context.Context, filter bson.M) (*models.ResidentRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.ResidentRequest
	err := r.coll.FindOne(ctx, filter).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching resident request: %w", err)
	}
	return &req, nil
}

func (r *MongoRequestRepo) updateOne(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error updating resident request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrRequestNotFound
	}
	return nil
}
