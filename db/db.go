package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection is the slice of *mongo.Collection the handlers use. Handlers
// reach collections through Store so tests can substitute a fake.
type Collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateByID(ctx context.Context, id interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// Store holds the collection handles for the six entity collections.
// Materials has no routes yet but the collection is part of the schema.
type Store struct {
	Users     Collection
	Sessions  Collection
	Reviews   Collection
	Bookings  Collection
	Notes     Collection
	Materials Collection
}

// Connect dials MongoDB and verifies the connection with a bounded ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

// NewStore builds the collection handles from a connected client.
func NewStore(client *mongo.Client, dbName string) *Store {
	database := client.Database(dbName)
	return &Store{
		Users:     database.Collection("users"),
		Sessions:  database.Collection("sessions"),
		Reviews:   database.Collection("reviews"),
		Bookings:  database.Collection("bookings"),
		Notes:     database.Collection("notes"),
		Materials: database.Collection("materials"),
	}
}

// EnsureIndexes creates the unique indexes that back the insert-if-absent
// semantics of user and booking creation. A check-then-insert sequence
// races under concurrent writers; the index makes the insert conditional.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	database := client.Database(dbName)

	_, err := database.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("bookings").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sessionId", Value: 1},
			{Key: "studentEmail", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}
