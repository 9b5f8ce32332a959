package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentnest/rentnest-server/internal/models"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, s *models.Subscription) error
	ListForUser(ctx context.Context, userID string) ([]*models.Subscription, error)
}

type subscriptionRepo struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(coll *mongo.Collection) SubscriptionRepository {
	return &subscriptionRepo{coll: coll}
}

func (r *subscriptionRepo) Create(ctx context.Context, s *models.Subscription) error {
	s.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, s)
	return err
}

func (r *subscriptionRepo) ListForUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Subscription
	for cur.Next(ctx) {
		var s models.Subscription
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}
