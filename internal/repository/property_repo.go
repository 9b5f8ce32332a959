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

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	Get(ctx context.Context, id string) (*models.Property, error)
	List(ctx context.Context, f models.PropertyFilter) ([]*models.Property, error)
	Update(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, id string) error
}

type propertyRepo struct {
	coll *mongo.Collection
}

func NewPropertyRepository(coll *mongo.Collection) PropertyRepository {
	idx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "city", Value: 1},
			{Key: "price", Value: 1},
		},
		Options: options.Index().SetName("city_price_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &propertyRepo{coll: coll}
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

func (r *propertyRepo) Get(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepo) List(ctx context.Context, f models.PropertyFilter) ([]*models.Property, error) {
	filter := bson.M{}
	if f.City != "" {
		filter["city"] = f.City
	}
	if f.PropertyType != "" {
		filter["property_type"] = f.PropertyType
	}
	if f.LandlordID != "" {
		filter["landlord_id"] = f.LandlordID
	}
	if f.AvailableOnly {
		filter["available"] = true
	}
	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Property
	for cur.Next(ctx) {
		var p models.Property
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *propertyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
