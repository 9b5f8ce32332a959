package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentnest/rentnest-server/internal/apperr"
	"github.com/rentnest/rentnest-server/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	Get(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Update(ctx context.Context, id string, fullName, phone string) (*models.Profile, error)
	SetSubscription(ctx context.Context, id, planID, status string) error
}

type profileRepo struct {
	coll *mongo.Collection
}

func NewProfileRepository(coll *mongo.Collection) ProfileRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_uniq"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &profileRepo{coll: coll}
}

func (r *profileRepo) Create(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *profileRepo) Get(ctx context.Context, id string) (*models.Profile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *profileRepo) findOne(ctx context.Context, filter bson.M) (*models.Profile, error) {
	var p models.Profile
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) Update(ctx context.Context, id string, fullName, phone string) (*models.Profile, error) {
	update := bson.M{"$set": bson.M{
		"full_name":  fullName,
		"phone":      phone,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Profile
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) SetSubscription(ctx context.Context, id, planID, status string) error {
	update := bson.M{"$set": bson.M{
		"subscription_plan":   planID,
		"subscription_status": status,
		"updated_at":          time.Now().UTC(),
	}}
	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
