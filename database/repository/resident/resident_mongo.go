package residentRepo

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

// MongoResidentRepo implements ResidentRepository using MongoDB.
type MongoResidentRepo struct {
	coll *mongo.Collection
}

func NewMongoResidentRepo(db *mongo.Database) *MongoResidentRepo {
	return &MongoResidentRepo{coll: db.Collection("residents")}
}

func (r *MongoResidentRepo) GetByID(ctx context.Context, id string) (*models.Resident, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	projection := bson.M{"id": 1, "name": 1, "fcmToken": 1}
	var resident models.Resident
	err := r.coll.FindOne(ctx, bson.M{"id": id}, options.FindOne().SetProjection(projection)).Decode(&resident)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrResidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resident with id %s: %w", id, err)
	}
	return &resident, nil
}
