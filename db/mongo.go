package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.vocdoni.io/dvote/log"
)

// snapshot is the document stored for every key. The value is kept as the
// raw JSON snapshot so every backend shares the same encoding.
type snapshot struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStorage implements Storage over an external MongoDB service, one
// document per snapshot key.
type MongoStorage struct {
	client   *mongo.Client
	keysLock sync.RWMutex

	snapshots *mongo.Collection
}

// NewMongoStorage connects to the MongoDB server at url and prepares the
// snapshots collection of the given database. If SURVEYPRO_MONGO_RESET_DB
// is set, the collection is dropped first.
func NewMongoStorage(url, database string) (*MongoStorage, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo URL is not defined")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is not defined")
	}
	log.Infow("connecting to mongodb", "url", url, "database", database)
	opts := options.Client()
	opts.ApplyURI(url)
	opts.SetMaxConnecting(200)
	timeout := time.Second * 10
	opts.ConnectTimeout = &timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	ms := &MongoStorage{
		client:    client,
		snapshots: client.Database(database).Collection("snapshots"),
	}
	if reset := os.Getenv("SURVEYPRO_MONGO_RESET_DB"); reset != "" {
		if err := ms.Reset(); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

// Close disconnects the client.
func (ms *MongoStorage) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.client.Disconnect(ctx); err != nil {
		log.Warn(err)
	}
}

// Reset drops every stored snapshot.
func (ms *MongoStorage) Reset() error {
	log.Infof("resetting database")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return ms.snapshots.Drop(ctx)
}

// Load decodes the snapshot stored at key into v.
func (ms *MongoStorage) Load(key string, v any) error {
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var doc snapshot
	if err := ms.snapshots.FindOne(ctx, bson.M{"_id": Namespace + key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(doc.Value), v); err != nil {
		return fmt.Errorf("%w: cannot decode %s: %v", ErrInvalidData, key, err)
	}
	return nil
}

// Save upserts the snapshot of v at key.
func (ms *MongoStorage) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{"value": string(data), "updatedAt": time.Now()}}
	opts := options.Update().SetUpsert(true)
	if _, err := ms.snapshots.UpdateOne(ctx, bson.M{"_id": Namespace + key}, update, opts); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot at key.
func (ms *MongoStorage) Delete(key string) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := ms.snapshots.DeleteOne(ctx, bson.M{"_id": Namespace + key}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// String returns every stored snapshot as a JSON object keyed by snapshot
// key, the format Import accepts.
func (ms *MongoStorage) String() string {
	const contextTimeout = 30 * time.Second
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), contextTimeout)
	defer cancel()
	cur, err := ms.snapshots.Find(ctx, bson.D{{}})
	if err != nil {
		log.Warn(err)
		return "{}"
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			log.Warn(err)
		}
	}()
	dump := map[string]json.RawMessage{}
	for cur.Next(ctx) {
		var doc snapshot
		if err := cur.Decode(&doc); err != nil {
			log.Warn(err)
			continue
		}
		dump[strings.TrimPrefix(doc.Key, Namespace)] = json.RawMessage(doc.Value)
	}
	data, err := json.Marshal(dump)
	if err != nil {
		log.Warn(err)
		return "{}"
	}
	return string(data)
}

// Import stores the snapshots of a JSON dump produced by String().
func (ms *MongoStorage) Import(jsonData []byte) error {
	log.Infof("importing database")
	dump := map[string]json.RawMessage{}
	if err := json.Unmarshal(jsonData, &dump); err != nil {
		return err
	}
	log.Infow("importing snapshots", "count", len(dump))
	for key, value := range dump {
		if err := ms.Save(key, value); err != nil {
			log.Warnw("error upserting snapshot", "err", err, "key", key)
		}
	}
	log.Infof("imported database!")
	return nil
}
