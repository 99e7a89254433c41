package mongodb

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
)

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, err := objectID(oid.Hex())
	if err != nil || got != oid {
		t.Fatalf("objectID(%s) = %v, %v", oid.Hex(), got, err)
	}
	for _, id := range []string{"", "nope", "64b7f0c2e4b0a1b2c3d4e5f", oid.Hex() + "00"} {
		if _, err := objectID(id); !errors.Is(err, repository.ErrInvalidID) {
			t.Errorf("objectID(%q) err = %v", id, err)
		}
	}
}

func TestTranslate(t *testing.T) {
	if translate(nil) != nil {
		t.Fatal("nil translated")
	}
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"no documents", mongo.ErrNoDocuments, repository.ErrNotFound},
		{"duplicate insert", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}, repository.ErrConflict},
		{"duplicate update", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"}, repository.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := translate(tc.in); !errors.Is(got, tc.want) {
				t.Fatalf("translate = %v, want %v", got, tc.want)
			}
		})
	}

	other := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121, Message: "document failed validation"}}}
	got := translate(other)
	if errors.Is(got, repository.ErrConflict) || errors.Is(got, repository.ErrNotFound) {
		t.Fatalf("validation failure translated to %v", got)
	}
	var we mongo.WriteException
	if !errors.As(got, &we) {
		t.Fatalf("driver error not passed through: %v", got)
	}
}

func TestFindOptions(t *testing.T) {
	fo := findOptions(repository.FindOptions{Skip: 20, Limit: 10})
	if fo.Skip == nil || *fo.Skip != 20 || fo.Limit == nil || *fo.Limit != 10 {
		t.Fatalf("skip/limit = %v/%v", fo.Skip, fo.Limit)
	}
	sort, ok := fo.Sort.(bson.D)
	if !ok || len(sort) != 2 || sort[0].Key != "createdAt" || sort[0].Value != -1 {
		t.Fatalf("sort = %#v", fo.Sort)
	}

	fo = findOptions(repository.FindOptions{Skip: -1})
	if fo.Skip != nil || fo.Limit != nil {
		t.Fatalf("zero options set skip/limit: %v/%v", fo.Skip, fo.Limit)
	}
}

func TestOrderFilter(t *testing.T) {
	owner := primitive.NewObjectID()
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)

	q := orderFilter(repository.OrderFilter{
		UserID:      owner.Hex(),
		Type:        model.FulfillmentBilti,
		CreatedFrom: from,
		CreatedTo:   to,
	})
	if q["user"] != owner || q["orderType"] != "bilti" {
		t.Fatalf("filter = %v", q)
	}
	// both bounds inclusive
	created, ok := q["createdAt"].(bson.M)
	if !ok || created["$gte"] != from || created["$lte"] != to || len(created) != 2 {
		t.Fatalf("createdAt = %v", q["createdAt"])
	}

	if q := orderFilter(repository.OrderFilter{CreatedTo: to}); len(q["createdAt"].(bson.M)) != 1 {
		t.Fatalf("open lower bound = %v", q)
	}
	if q := orderFilter(repository.OrderFilter{}); len(q) != 0 {
		t.Fatalf("empty filter = %v", q)
	}

	// an owner that is not an ObjectID owns nothing
	q = orderFilter(repository.OrderFilter{UserID: "not-hex"})
	if _, ok := q["user"]; ok {
		t.Fatalf("bad owner matched by user: %v", q)
	}
	if cond, ok := q["_id"].(bson.M); !ok || cond["$exists"] != false {
		t.Fatalf("bad owner = %v", q)
	}
}
