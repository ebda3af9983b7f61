// Package dbtest provides a function-field fake for db.Collection so
// handler tests run against canned documents instead of a live MongoDB.
package dbtest

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection implements db.Collection. Unset functions return empty
// results, so a test only fills in the calls it cares about.
type Collection struct {
	FindOneFn        func(ctx context.Context, filter interface{}) *mongo.SingleResult
	FindFn           func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOneFn      func(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error)
	UpdateOneFn      func(ctx context.Context, filter, update interface{}) (*mongo.UpdateResult, error)
	UpdateByIDFn     func(ctx context.Context, id, update interface{}) (*mongo.UpdateResult, error)
	DeleteOneFn      func(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error)
	CountDocumentsFn func(ctx context.Context, filter interface{}) (int64, error)
}

func (c *Collection) FindOne(ctx context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	if c.FindOneFn == nil {
		return NoDoc()
	}
	return c.FindOneFn(ctx, filter)
}

func (c *Collection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	if c.FindFn == nil {
		return mongo.NewCursorFromDocuments(nil, nil, nil)
	}
	return c.FindFn(ctx, filter, opts...)
}

func (c *Collection) InsertOne(ctx context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if c.InsertOneFn == nil {
		return &mongo.InsertOneResult{}, nil
	}
	return c.InsertOneFn(ctx, document)
}

func (c *Collection) UpdateOne(ctx context.Context, filter, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if c.UpdateOneFn == nil {
		return &mongo.UpdateResult{}, nil
	}
	return c.UpdateOneFn(ctx, filter, update)
}

func (c *Collection) UpdateByID(ctx context.Context, id, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if c.UpdateByIDFn == nil {
		return &mongo.UpdateResult{}, nil
	}
	return c.UpdateByIDFn(ctx, id, update)
}

func (c *Collection) DeleteOne(ctx context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if c.DeleteOneFn == nil {
		return &mongo.DeleteResult{}, nil
	}
	return c.DeleteOneFn(ctx, filter)
}

func (c *Collection) CountDocuments(ctx context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	if c.CountDocumentsFn == nil {
		return 0, nil
	}
	return c.CountDocumentsFn(ctx, filter)
}

// Docs builds a cursor over the given documents.
func Docs(docs ...interface{}) (*mongo.Cursor, error) {
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

// Doc builds a single-document result.
func Doc(doc interface{}) *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

// NoDoc builds the result a FindOne miss produces. The placeholder
// document is never decoded; NewSingleResultFromDocument rejects nil.
func NoDoc() *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

// DuplicateKey builds the write error a violated unique index produces.
func DuplicateKey() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}
