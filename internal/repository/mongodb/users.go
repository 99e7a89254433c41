package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
)

// userDoc is the stored shape of a user. Email is omitted when empty so
// the sparse unique index ignores accounts without one.
type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Phone        string             `bson:"phone"`
	Email        string             `bson:"email,omitempty"`
	Password     string             `bson:"password"`
	Role         string             `bson:"role"`
	Address      string             `bson:"address"`
	City         string             `bson:"city"`
	BusinessName string             `bson:"businessName"`
	RefreshToken string             `bson:"refreshToken,omitempty"`
	JoiningDate  time.Time          `bson:"joiningDate"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDoc) model() model.User {
	return model.User{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Phone:            d.Phone,
		Email:            d.Email,
		PasswordHash:     d.Password,
		Role:             model.Role(d.Role),
		Address:          d.Address,
		City:             d.City,
		BusinessName:     d.BusinessName,
		RefreshTokenHash: d.RefreshToken,
		JoiningDate:      d.JoiningDate,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// UserRepo stores accounts in the users collection.
type UserRepo struct{ c *mongo.Collection }

// NewUserRepo binds the repository to db.
func NewUserRepo(db *mongo.Database) *UserRepo { return &UserRepo{c: db.Collection("users")} }

// EnsureIndexes creates the unique phone index and the sparse unique
// email index (idempotent).
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	return err
}

func userFilter(f repository.UserFilter) bson.M {
	q := bson.M{}
	if f.Phone != "" {
		q["phone"] = f.Phone
	}
	if f.Email != "" {
		q["email"] = f.Email
	}
	if f.Role != "" {
		q["role"] = string(f.Role)
	}
	return q
}

func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	doc := userDoc{
		Name:         u.Name,
		Phone:        u.Phone,
		Email:        u.Email,
		Password:     u.PasswordHash,
		Role:         string(u.Role),
		Address:      u.Address,
		City:         u.City,
		BusinessName: u.BusinessName,
		RefreshToken: u.RefreshTokenHash,
		JoiningDate:  u.JoiningDate,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	res, err := r.c.InsertOne(ctx, doc)
	if err != nil {
		return translate(err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.User{}, err
	}
	var d userDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return model.User{}, translate(err)
	}
	return d.model(), nil
}

func (r *UserRepo) FindOne(ctx context.Context, f repository.UserFilter) (model.User, error) {
	var d userDoc
	err := r.c.FindOne(ctx, userFilter(f), options.FindOne().SetSort(newestFirst)).Decode(&d)
	if err != nil {
		return model.User{}, translate(err)
	}
	return d.model(), nil
}

func (r *UserRepo) Find(ctx context.Context, f repository.UserFilter, opts repository.FindOptions) ([]model.User, error) {
	cur, err := r.c.Find(ctx, userFilter(f), findOptions(opts))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.User, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}

func (r *UserRepo) Count(ctx context.Context, f repository.UserFilter) (int64, error) {
	return r.c.CountDocuments(ctx, userFilter(f))
}

func (r *UserRepo) UpdateByID(ctx context.Context, id string, upd repository.UserUpdate) (model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.User{}, err
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	unset := bson.M{}
	put := func(key string, v *string) {
		if v == nil {
			return
		}
		if *v == "" && (key == "email" || key == "refreshToken") {
			unset[key] = ""
			return
		}
		set[key] = *v
	}
	put("name", upd.Name)
	put("phone", upd.Phone)
	put("email", upd.Email)
	put("password", upd.PasswordHash)
	put("address", upd.Address)
	put("city", upd.City)
	put("businessName", upd.BusinessName)
	put("refreshToken", upd.RefreshTokenHash)
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	change := bson.M{"$set": set}
	if len(unset) > 0 {
		change["$unset"] = unset
	}
	var d userDoc
	if err := r.c.FindOneAndUpdate(ctx, bson.M{"_id": oid}, change, returnAfter()).Decode(&d); err != nil {
		return model.User{}, translate(err)
	}
	return d.model(), nil
}

func (r *UserRepo) DeleteByID(ctx context.Context, id string) error {
	return deleteByID(ctx, r.c, id)
}
