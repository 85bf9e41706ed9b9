package repositories

import (
	"context"
	"time"

	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExchangeEventRepository is the append-only exchange log kept in MongoDB.
type ExchangeEventRepository interface {
	Record(ctx context.Context, event *models.ExchangeEvent) error
	ListByUser(ctx context.Context, userID uint, p query.Params) ([]models.ExchangeEvent, int64, error)
}

type mongoExchangeEventRepository struct {
	collection *mongo.Collection
}

func NewMongoExchangeEventRepository(db *mongo.Database) ExchangeEventRepository {
	return &mongoExchangeEventRepository{collection: db.Collection("exchange_events")}
}

func (r *mongoExchangeEventRepository) Record(ctx context.Context, event *models.ExchangeEvent) error {
	event.ID = primitive.NewObjectID()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// ListByUser returns events where userID bought or sold, newest first.
func (r *mongoExchangeEventRepository) ListByUser(ctx context.Context, userID uint, p query.Params) ([]models.ExchangeEvent, int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"buyer_id": userID},
		bson.M{"seller_id": userID},
	}}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Size))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var events []models.ExchangeEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
