package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentnest/rentnest-server/internal/apperr"
	"github.com/rentnest/rentnest-server/internal/models"
)

type ConversationRepository interface {
	Resolve(ctx context.Context, propertyID, tenantID, landlordID string) (*models.Conversation, error)
	Get(ctx context.Context, id string) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error)
}

type conversationRepo struct {
	coll *mongo.Collection
}

func NewConversationRepository(coll *mongo.Collection) ConversationRepository {
	// unique triple index backs the at-most-one-conversation invariant
	idx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "property_id", Value: 1},
			{Key: "tenant_id", Value: 1},
			{Key: "landlord_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("conversation_triple_uniq"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &conversationRepo{coll: coll}
}

// Resolve returns the conversation for the triple, creating it on first
// contact. FindOneAndUpdate with upsert makes concurrent first contacts land
// on the same document instead of racing two inserts.
func (r *conversationRepo) Resolve(ctx context.Context, propertyID, tenantID, landlordID string) (*models.Conversation, error) {
	filter := bson.M{
		"property_id": propertyID,
		"tenant_id":   tenantID,
		"landlord_id": landlordID,
	}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":         uuid.NewString(),
		"property_id": propertyID,
		"tenant_id":   tenantID,
		"landlord_id": landlordID,
		"created_at":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var conv models.Conversation
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conv)
	if err == nil {
		return &conv, nil
	}
	// A concurrent upsert can still trip the unique index; the document is
	// there now, so a plain find resolves it.
	if mongo.IsDuplicateKeyError(err) {
		if ferr := r.coll.FindOne(ctx, filter).Decode(&conv); ferr == nil {
			return &conv, nil
		}
	}
	return nil, err
}

func (r *conversationRepo) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepo) ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"tenant_id": userID},
		bson.M{"landlord_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Conversation
	for cur.Next(ctx) {
		var c models.Conversation
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}
