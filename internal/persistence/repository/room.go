package repository

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const watchRetryDelay = 2 * time.Second

type mongoRoomStore struct {
	db *mongo.Database
}

// NewMongoRoomStore returns the mongo-backed RoomStore. Rooms live in the
// lobbies collection keyed by code; the unique _id index is what turns a
// code collision into ErrRoomExists instead of an overwrite.
func NewMongoRoomStore(db *mongo.Database) domain.RoomStore {
	return &mongoRoomStore{db: db}
}

func (s *mongoRoomStore) collection() *mongo.Collection {
	return s.db.Collection(db.LobbiesCollection)
}

func (s *mongoRoomStore) Create(ctx context.Context, room *domain.Room) error {
	if room == nil || room.Code == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.collection().InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrRoomExists
	}
	return err
}

func (s *mongoRoomStore) Get(ctx context.Context, code string) (*domain.Room, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput
	}

	var room domain.Room
	err := s.collection().FindOne(ctx, bson.M{"_id": code}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Update replaces the document only when the stored version still matches
// expectedVersion. A lost race surfaces as ErrVersionConflict so the caller
// can re-read and retry instead of silently dropping a concurrent leave.
func (s *mongoRoomStore) Update(ctx context.Context, room *domain.Room, expectedVersion int64) error {
	if room == nil || room.Code == "" {
		return domain.ErrInvalidInput
	}

	next := *room
	next.Version = expectedVersion + 1

	res, err := s.collection().ReplaceOne(ctx,
		bson.M{"_id": room.Code, "version": expectedVersion},
		&next,
	)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		if _, getErr := s.Get(ctx, room.Code); errors.Is(getErr, domain.ErrRoomNotFound) {
			return domain.ErrRoomNotFound
		}
		return domain.ErrVersionConflict
	}

	room.Version = next.Version
	return nil
}

func (s *mongoRoomStore) Delete(ctx context.Context, code string, expectedVersion int64) error {
	if code == "" {
		return domain.ErrInvalidInput
	}

	res, err := s.collection().DeleteOne(ctx, bson.M{"_id": code, "version": expectedVersion})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		if _, getErr := s.Get(ctx, code); errors.Is(getErr, domain.ErrRoomNotFound) {
			return domain.ErrRoomNotFound
		}
		return domain.ErrVersionConflict
	}
	return nil
}

func (s *mongoRoomStore) ListPublic(ctx context.Context) ([]*domain.Room, error) {
	cursor, err := s.collection().Find(ctx, bson.M{"is_public": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rooms []*domain.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListPublicWaiting filters server-side but sorts locally, matching the
// live feed which re-derives the same snapshot on every change.
func (s *mongoRoomStore) ListPublicWaiting(ctx context.Context, limit int) ([]*domain.Room, error) {
	filter := bson.M{"is_public": true, "status": domain.StatusWaiting}
	opts := options.Find().SetLimit(int64(limit))

	cursor, err := s.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rooms []*domain.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}

	sortByCreatedAtDesc(rooms)
	return rooms, nil
}

func sortByCreatedAtDesc(rooms []*domain.Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
}

type changeEvent struct {
	OperationType string      `bson:"operationType"`
	FullDocument  domain.Room `bson:"fullDocument"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

// Watch follows one room through a change stream. The current snapshot is
// delivered first, then every insert/replace/update/delete. Subscribing to
// a code that does not exist fails with ErrRoomNotFound. Stream errors are
// pushed as RoomChange.Err and the stream is reopened; the watch only dies
// with its context.
func (s *mongoRoomStore) Watch(ctx context.Context, code string) (*domain.RoomWatch, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput
	}

	snapshot, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events := make(chan domain.RoomChange, 8)

	go func() {
		defer close(events)

		events <- domain.RoomChange{Room: snapshot}

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"documentKey._id": code}}},
		}
		opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

		for watchCtx.Err() == nil {
			stream, err := s.collection().Watch(watchCtx, pipeline, opts)
			if err != nil {
				if !push(watchCtx, events, domain.RoomChange{Err: err}) {
					return
				}
				sleep(watchCtx, watchRetryDelay)
				continue
			}

			s.pumpRoomStream(watchCtx, stream, events)
			_ = stream.Close(context.Background())
		}
	}()

	return domain.NewRoomWatch(events, cancel), nil
}

func (s *mongoRoomStore) pumpRoomStream(ctx context.Context, stream *mongo.ChangeStream, events chan domain.RoomChange) {
	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			log.Printf("room watch: decode failed: %v", err)
			continue
		}

		switch ev.OperationType {
		case "delete":
			if !push(ctx, events, domain.RoomChange{Deleted: true}) {
				return
			}
		default:
			room := ev.FullDocument
			if !push(ctx, events, domain.RoomChange{Room: &room}) {
				return
			}
		}
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		push(ctx, events, domain.RoomChange{Err: err})
		sleep(ctx, watchRetryDelay)
	}
}

// WatchPublicWaiting re-derives the discovery snapshot whenever any public
// room changes. Cheap at this scale; the feed is capped anyway.
func (s *mongoRoomStore) WatchPublicWaiting(ctx context.Context, limit int) (*domain.FeedWatch, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	events := make(chan domain.FeedChange, 4)

	go func() {
		defer close(events)

		emit := func() bool {
			rooms, err := s.ListPublicWaiting(watchCtx, limit)
			if err != nil {
				if watchCtx.Err() != nil {
					return false
				}
				return push(watchCtx, events, domain.FeedChange{Err: err})
			}
			return push(watchCtx, events, domain.FeedChange{Rooms: rooms})
		}

		if !emit() {
			return
		}

		for watchCtx.Err() == nil {
			stream, err := s.collection().Watch(watchCtx, mongo.Pipeline{})
			if err != nil {
				if !push(watchCtx, events, domain.FeedChange{Err: err}) {
					return
				}
				sleep(watchCtx, watchRetryDelay)
				continue
			}

			for stream.Next(watchCtx) {
				if !emit() {
					_ = stream.Close(context.Background())
					return
				}
			}

			if err := stream.Err(); err != nil && watchCtx.Err() == nil {
				push(watchCtx, events, domain.FeedChange{Err: err})
				sleep(watchCtx, watchRetryDelay)
			}
			_ = stream.Close(context.Background())
		}
	}()

	return domain.NewFeedWatch(events, cancel), nil
}

func push[T any](ctx context.Context, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
