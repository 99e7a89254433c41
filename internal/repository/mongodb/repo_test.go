package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
)

func duplicateKey(index string) bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error index: " + index,
	})
}

func TestUserRepoAgainstMockServer(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns an ObjectID", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		u := model.User{Name: "Ali", Phone: "03001234567", Role: model.RoleDistributor}
		if err := (&UserRepo{c: mt.Coll}).Create(ctx, &u); err != nil {
			mt.Fatalf("create: %v", err)
		}
		if _, err := primitive.ObjectIDFromHex(u.ID); err != nil {
			mt.Fatalf("id = %q", u.ID)
		}
	})

	mt.Run("duplicate phone is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKey("phone_1"))
		u := model.User{Name: "Ali", Phone: "03001234567", Role: model.RoleDistributor}
		if err := (&UserRepo{c: mt.Coll}).Create(ctx, &u); !errors.Is(err, repository.ErrConflict) {
			mt.Fatalf("err = %v", err)
		}
	})

	mt.Run("find by id decodes the document", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "distributor.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Ali"},
			{Key: "phone", Value: "03001234567"},
			{Key: "password", Value: "$2a$10$hash"},
			{Key: "role", Value: "distributor"},
			{Key: "refreshToken", Value: "abc123"},
		}))
		u, err := (&UserRepo{c: mt.Coll}).FindByID(ctx, oid.Hex())
		if err != nil {
			mt.Fatal(err)
		}
		if u.ID != oid.Hex() || u.PasswordHash != "$2a$10$hash" || u.RefreshTokenHash != "abc123" || u.Role != model.RoleDistributor {
			mt.Fatalf("user = %+v", u)
		}
	})

	mt.Run("missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "distributor.users", mtest.FirstBatch))
		_, err := (&UserRepo{c: mt.Coll}).FindByID(ctx, primitive.NewObjectID().Hex())
		if !errors.Is(err, repository.ErrNotFound) {
			mt.Fatalf("err = %v", err)
		}
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		repo := &UserRepo{c: mt.Coll}
		if _, err := repo.FindByID(ctx, "42"); !errors.Is(err, repository.ErrInvalidID) {
			mt.Fatalf("find: %v", err)
		}
		if err := repo.DeleteByID(ctx, "42"); !errors.Is(err, repository.ErrInvalidID) {
			mt.Fatalf("delete: %v", err)
		}
	})

	mt.Run("delete of a missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		err := (&UserRepo{c: mt.Coll}).DeleteByID(ctx, primitive.NewObjectID().Hex())
		if !errors.Is(err, repository.ErrNotFound) {
			mt.Fatalf("err = %v", err)
		}
	})
}

func TestProductRepoDuplicateCode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	mt.Run("duplicate code", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKey("productCode_1"))
		p := model.Product{Code: "RICE-5", PriceEnglish: "Rs. 1,250"}
		if err := (&ProductRepo{c: mt.Coll}).Create(context.Background(), &p); !errors.Is(err, repository.ErrConflict) {
			mt.Fatalf("err = %v", err)
		}
	})
}

func TestOrderRepoAgainstMockServer(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "distributor.orders", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(7)}}))
		n, err := (&OrderRepo{c: mt.Coll}).Count(ctx, repository.OrderFilter{Type: model.FulfillmentDelivery})
		if err != nil || n != 7 {
			mt.Fatalf("count = %d, %v", n, err)
		}
	})

	mt.Run("update returns the new document", func(mt *mtest.T) {
		oid, owner := primitive.NewObjectID(), primitive.NewObjectID()
		total, _ := primitive.ParseDecimal128("3300.00")
		now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: oid},
			{Key: "customer", Value: bson.D{{Key: "name", Value: "Bilal"}, {Key: "city", Value: "Lahore"}}},
			{Key: "items", Value: bson.A{bson.D{{Key: "productCode", Value: "RICE-5"}, {Key: "price", Value: "Rs. 1,100"}, {Key: "quantity", Value: 3}}}},
			{Key: "total", Value: total},
			{Key: "orderType", Value: "delivery"},
			{Key: "status", Value: "shipped"},
			{Key: "user", Value: owner},
			{Key: "updatedAt", Value: now},
		}}))
		status := model.StatusShipped
		o, err := (&OrderRepo{c: mt.Coll}).UpdateByID(ctx, oid.Hex(), repository.OrderUpdate{Status: &status, UpdatedAt: now})
		if err != nil {
			mt.Fatal(err)
		}
		if o.ID != oid.Hex() || o.UserID != owner.Hex() || o.Status != model.StatusShipped || o.Total.StringFixed(2) != "3300.00" {
			mt.Fatalf("order = %+v", o)
		}
		if len(o.Items) != 1 || o.Items[0].Quantity != 3 || o.Customer.City != "Lahore" {
			mt.Fatalf("snapshot = %+v %+v", o.Customer, o.Items)
		}
	})

	mt.Run("update of a missing order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		status := model.StatusConfirmed
		_, err := (&OrderRepo{c: mt.Coll}).UpdateByID(ctx, primitive.NewObjectID().Hex(), repository.OrderUpdate{Status: &status})
		if !errors.Is(err, repository.ErrNotFound) {
			mt.Fatalf("err = %v", err)
		}
	})

	mt.Run("create needs an ObjectID owner", func(mt *mtest.T) {
		o := model.Order{UserID: "not-hex", Status: model.StatusPending}
		if err := (&OrderRepo{c: mt.Coll}).Create(ctx, &o); !errors.Is(err, repository.ErrInvalidID) {
			mt.Fatalf("err = %v", err)
		}
	})
}
