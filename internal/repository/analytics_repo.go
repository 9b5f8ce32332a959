package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentnest/rentnest-server/internal/models"
)

type AnalyticsRepository interface {
	RecordView(ctx context.Context, v *models.PropertyView) error
	AddInterest(ctx context.Context, propertyID, userID, contactMethod string) error
	RemoveInterest(ctx context.Context, propertyID, userID string) error
	HasInterest(ctx context.Context, propertyID, userID string) (bool, error)
	InterestCount(ctx context.Context, propertyID string) (int64, error)
}

type analyticsRepo struct {
	views     *mongo.Collection
	interests *mongo.Collection
}

func NewAnalyticsRepository(views, interests *mongo.Collection) AnalyticsRepository {
	idx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "property_id", Value: 1},
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("interest_uniq"),
	}
	_, _ = interests.Indexes().CreateOne(context.Background(), idx)
	return &analyticsRepo{views: views, interests: interests}
}

func (r *analyticsRepo) RecordView(ctx context.Context, v *models.PropertyView) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt = time.Now().UTC()
	_, err := r.views.InsertOne(ctx, v)
	return err
}

// AddInterest is idempotent: re-expressing interest keeps a single row.
func (r *analyticsRepo) AddInterest(ctx context.Context, propertyID, userID, contactMethod string) error {
	filter := bson.M{"property_id": propertyID, "user_id": userID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":            uuid.NewString(),
		"property_id":    propertyID,
		"user_id":        userID,
		"contact_method": contactMethod,
		"created_at":     time.Now().UTC(),
	}}
	_, err := r.interests.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *analyticsRepo) RemoveInterest(ctx context.Context, propertyID, userID string) error {
	_, err := r.interests.DeleteOne(ctx, bson.M{"property_id": propertyID, "user_id": userID})
	return err
}

func (r *analyticsRepo) HasInterest(ctx context.Context, propertyID, userID string) (bool, error) {
	err := r.interests.FindOne(ctx, bson.M{"property_id": propertyID, "user_id": userID}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

func (r *analyticsRepo) InterestCount(ctx context.Context, propertyID string) (int64, error) {
	return r.interests.CountDocuments(ctx, bson.M{"property_id": propertyID})
}
