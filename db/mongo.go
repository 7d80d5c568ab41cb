package db

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/u16-io/FindPangram/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const collectionName = "pangrams"

// newestFirst sorts by creation time; seq breaks ties inside one millisecond.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}

var lastSeq atomic.Int64

// nextSeq returns a strictly increasing value, normally the current time in
// nanoseconds.
func nextSeq() int64 {
	for {
		last := lastSeq.Load()
		next := time.Now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if lastSeq.CompareAndSwap(last, next) {
			return next
		}
	}
}

// MongoStore keeps pangrams as documents in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// OpenMongo connects to uri and prepares the pangrams collection in database.
func OpenMongo(ctx context.Context, uri, database string, logger *zap.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(database).Collection(collectionName)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: newestFirst,
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", database))
	return &MongoStore{client: client, collection: collection, logger: logger}, nil
}

// Create inserts p, stamping it with the next insertion sequence.
func (s *MongoStore) Create(ctx context.Context, p *model.Pangram) error {
	p.Seq = nextSeq()
	_, err := s.collection.InsertOne(ctx, p)
	return err
}

// List returns every document, newest first.
func (s *MongoStore) List(ctx context.Context) ([]model.Pangram, error) {
	opts := options.Find().SetSort(newestFirst)
	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ps := []model.Pangram{}
	if err := cursor.All(ctx, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// Ping checks the connection to the server.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
