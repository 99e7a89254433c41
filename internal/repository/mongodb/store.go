// Package mongodb implements the repositories on MongoDB, the default
// document store. Each repository owns one collection: users, products
// or orders.
package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/distributor-orders/internal/repository"
)

// New builds the repositories on db and makes sure the unique indexes
// exist.
func New(ctx context.Context, client *mongo.Client, db *mongo.Database) (repository.Store, error) {
	users := &UserRepo{c: db.Collection("users")}
	products := &ProductRepo{c: db.Collection("products")}
	orders := &OrderRepo{c: db.Collection("orders")}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := users.EnsureIndexes(ctx); err != nil {
		return repository.Store{}, err
	}
	if err := products.EnsureIndexes(ctx); err != nil {
		return repository.Store{}, err
	}
	if err := orders.EnsureIndexes(ctx); err != nil {
		return repository.Store{}, err
	}
	return repository.Store{
		Users:    users,
		Products: products,
		Orders:   orders,
		Close:    client.Disconnect,
	}, nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrConflict
	}
	return err
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func findOptions(opts repository.FindOptions) *options.FindOptions {
	fo := options.Find().SetSort(newestFirst)
	if opts.Skip > 0 {
		fo.SetSkip(int64(opts.Skip))
	}
	if opts.Limit > 0 {
		fo.SetLimit(int64(opts.Limit))
	}
	return fo
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func deleteByID(ctx context.Context, c *mongo.Collection, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
