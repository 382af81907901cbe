package repository

import (
	"context"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type roomAuditLogRepository struct {
	db *mongo.Database
}

func NewRoomAuditLogRepository(db *mongo.Database) domain.RoomAuditRepository {
	return &roomAuditLogRepository{
		db: db,
	}
}

func (r *roomAuditLogRepository) GetByRoomCode(ctx context.Context, roomCode string, limit int) ([]domain.RoomAuditLog, error) {
	collection := r.db.Collection(db.RoomAuditLogsCollection)

	filter := bson.M{"room_code": roomCode}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.RoomAuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *roomAuditLogRepository) Log(ctx context.Context, log *domain.RoomAuditLog) error {
	collection := r.db.Collection(db.RoomAuditLogsCollection)

	_, err := collection.InsertOne(ctx, log)
	return err
}

func (r *roomAuditLogRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.RoomAuditLogsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "room_code", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(2592000), // 30 days TTL
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
