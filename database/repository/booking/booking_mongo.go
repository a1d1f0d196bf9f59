package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB. Conditional
// writes are FindOneAndUpdate calls whose filter carries the precondition, so
// the check and the write are one atomic document operation.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo(db *mongo.Database) (*MongoBookingRepo, error) {
	repo := &MongoBookingRepo{coll: db.Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}}},
		{Keys: bson.D{{Key: "assignedProvider", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if booking.ProviderResponses == nil {
		booking.ProviderResponses = []models.ProviderResponse{}
	}
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) AppendProviderResponse(ctx context.Context, id string, resp models.ProviderResponse) (*models.Booking, error) {
	update := bson.M{
		"$push": bson.M{"providerResponses": resp},
		"$set":  bson.M{"updatedAt": resp.Timestamp},
		"$inc":  bson.M{"version": 1},
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"id": id}, update)
}

func (r *MongoBookingRepo) SetStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, fields StatusFields) (*models.Booking, error) {
	return r.findOneAndUpdate(ctx, id, statusFilter(id, from, fields), statusPipeline(to, fields))
}

// statusFilter carries the whole precondition of a status transition.
func statusFilter(id string, from []models.BookingStatus, fields StatusFields) bson.M {
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": from},
	}
	if fields.RequireActiveNegotiation {
		filter["negotiation.isActive"] = true
	}
	return filter
}

// statusPipeline is the update half of SetStatus. It is a pipeline so the
// response append and the negotiation close can read the stored document.
func statusPipeline(to models.BookingStatus, fields StatusFields) mongo.Pipeline {
	set := bson.D{
		{Key: "status", Value: literal(to)},
		{Key: "updatedAt", Value: literal(fields.At)},
		{Key: "version", Value: bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$version", 0}}}, 1}}}},
	}
	if fields.AssignedProvider != "" {
		set = append(set, bson.E{Key: "assignedProvider", Value: literal(fields.AssignedProvider)})
	}
	if fields.ProviderName != "" {
		set = append(set, bson.E{Key: "providerName", Value: literal(fields.ProviderName)})
	}
	if fields.TotalPrice != nil {
		set = append(set, bson.E{Key: "totalPrice", Value: literal(*fields.TotalPrice)})
	}
	if fields.PaymentPlan != nil {
		set = append(set, bson.E{Key: "paymentPlan", Value: literal(*fields.PaymentPlan)})
	}
	if fields.AppendResponse != nil {
		set = append(set, bson.E{Key: "providerResponses", Value: bson.D{
			{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$providerResponses", bson.A{}}}},
				bson.A{literal(*fields.AppendResponse)},
			}},
		}})
	}
	if fields.CloseNegotiation != "" {
		set = append(set, bson.E{Key: "negotiation", Value: bson.D{
			{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$eq", Value: bson.A{"$negotiation.isActive", true}}}},
				{Key: "then", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{
					"$negotiation",
					bson.D{
						{Key: "isActive", Value: false},
						{Key: "status", Value: literal(fields.CloseNegotiation)},
						{Key: "respondedAt", Value: literal(fields.At)},
					},
				}}}},
				{Key: "else", Value: "$negotiation"},
			}},
		}})
	}
	switch to {
	case models.StatusAccepted:
		set = append(set, bson.E{Key: "acceptedAt", Value: literal(fields.At)})
	case models.StatusCompleted:
		set = append(set, bson.E{Key: "completedAt", Value: literal(fields.At)})
	case models.StatusCancelled:
		set = append(set, bson.E{Key: "cancelledAt", Value: literal(fields.At)})
	}
	return mongo.Pipeline{bson.D{{Key: "$set", Value: set}}}
}

func (r *MongoBookingRepo) OpenNegotiation(ctx context.Context, id string, n models.Negotiation) (*models.Booking, error) {
	update := bson.M{
		"$set": bson.M{"negotiation": n, "updatedAt": n.ProposedAt},
		"$inc": bson.M{"version": 1},
	}
	return r.findOneAndUpdate(ctx, id, openNegotiationFilter(id), update)
}

// openNegotiationFilter matches a pending booking with no active episode.
func openNegotiationFilter(id string) bson.M {
	return bson.M{
		"id":                   id,
		"status":               models.StatusPending,
		"negotiation.isActive": bson.M{"$ne": true},
	}
}

func (r *MongoBookingRepo) CloseNegotiation(ctx context.Context, id string, outcome models.NegotiationStatus, at time.Time) (*models.Booking, error) {
	filter := bson.M{
		"id":                   id,
		"negotiation.isActive": true,
	}
	update := bson.M{
		"$set": bson.M{
			"negotiation.isActive":    false,
			"negotiation.status":      outcome,
			"negotiation.respondedAt": at,
			"updatedAt":               at,
		},
		"$inc": bson.M{"version": 1},
	}
	return r.findOneAndUpdate(ctx, id, filter, update)
}

func (r *MongoBookingRepo) LinkResidentRequest(ctx context.Context, id, requestID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                id,
		"residentRequestId": bson.M{"$in": bson.A{nil, ""}},
	}
	update := bson.M{
		"$set": bson.M{"residentRequestId": requestID},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("error linking resident request to booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		if err := r.missingOrStale(ctx, id); errors.Is(err, ErrBookingNotFound) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (r *MongoBookingRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":    models.StatusPending,
		"expiresAt": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching expired bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding expired bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) findOneAndUpdate(ctx context.Context, id string, filter bson.M, update interface{}) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missingOrStale(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error updating booking %s: %w", id, err)
	}
	return &updated, nil
}

// missingOrStale tells a missing booking apart from a failed precondition.
func (r *MongoBookingRepo) missingOrStale(ctx context.Context, id string) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error checking booking %s: %w", id, err)
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return ErrPreconditionFailed
}

// literal keeps caller-supplied values from being read as pipeline expressions.
func literal(v interface{}) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}
