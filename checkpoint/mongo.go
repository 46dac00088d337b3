package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "checkpoints"

type mongoCheckpoint struct {
	ThreadID  string    `bson:"_id"`
	State     []byte    `bson:"state"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps checkpoints in the checkpoints collection, one
// document per thread.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(mongoCollection)}
}

func (s *MongoStore) Get(ctx context.Context, threadID string) ([]byte, error) {
	var doc mongoCheckpoint
	err := s.coll.FindOne(ctx, bson.M{"_id": threadID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	return doc.State, nil
}

func (s *MongoStore) Put(ctx context.Context, threadID string, state []byte) error {
	doc := mongoCheckpoint{
		ThreadID:  threadID,
		State:     state,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": threadID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("put checkpoint: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, threadID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": threadID}); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

var _ Store = &MongoStore{}
