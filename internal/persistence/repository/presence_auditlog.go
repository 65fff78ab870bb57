package repository

import (
	"context"
	"time"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditLogRetention is how long audit records are kept before the TTL index
// removes them.
const AuditLogRetention = 30 * 24 * time.Hour

type presenceAuditLogRepository struct {
	db *mongo.Database
}

func NewPresenceAuditLogRepository(db *mongo.Database) domain.PresenceAuditRepository {
	return &presenceAuditLogRepository{
		db: db,
	}
}

func (r *presenceAuditLogRepository) collection() *mongo.Collection {
	return r.db.Collection(db.PresenceAuditLogsCollection)
}

func (r *presenceAuditLogRepository) Log(ctx context.Context, log *domain.PresenceAuditLog) error {
	_, err := r.collection().InsertOne(ctx, log)
	return err
}

func (r *presenceAuditLogRepository) GetBySpaceID(ctx context.Context, spaceID domain.SpaceID, limit int) ([]domain.PresenceAuditLog, error) {
	filter := bson.M{"space_id": spaceID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.PresenceAuditLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *presenceAuditLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) error {
	filter := bson.M{
		"timestamp": bson.M{
			"$lt": before,
		},
	}

	_, err := r.collection().DeleteMany(ctx, filter)
	return err
}

func (r *presenceAuditLogRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "space_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(AuditLogRetention.Seconds())),
		},
	}

	_, err := r.collection().Indexes().CreateMany(ctx, indexes)
	return err
}
