package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a client against the given URI and verifies it
// with a ping before returning the database handle.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type mongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps a mongo database as a Store. Document ids are
// hex object ids.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{db: db}
}

func (s *mongoStore) Collection(path string) Collection {
	return &mongoCollection{coll: s.db.Collection(path)}
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Get(ctx context.Context, id string) (*Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoDocument
	}

	var raw bson.M
	err = c.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &Document{ID: id, Fields: fieldsOf(raw)}, nil
}

func (c *mongoCollection) Set(ctx context.Context, id string, fields map[string]any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", id, err)
	}

	opts := options.Replace().SetUpsert(true)
	_, err = c.coll.ReplaceOne(ctx, bson.M{"_id": oid}, bson.M(fields), opts)
	if err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

func (c *mongoCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}

	result, err := c.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (c *mongoCollection) Add(ctx context.Context, fields map[string]any) (string, error) {
	result, err := c.coll.InsertOne(ctx, bson.M(fields))
	if err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

func (c *mongoCollection) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}

	_, err = c.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (c *mongoCollection) QueryAll(ctx context.Context) ([]Document, error) {
	cursor, err := c.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}

		id := ""
		if oid, ok := raw["_id"].(primitive.ObjectID); ok {
			id = oid.Hex()
		}
		docs = append(docs, Document{ID: id, Fields: fieldsOf(raw)})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}

	return docs, nil
}

func fieldsOf(raw bson.M) map[string]any {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = v
	}
	return fields
}
