package mongodb

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
)

type customerDoc struct {
	Name    string `bson:"name"`
	Phone   string `bson:"phone"`
	Address string `bson:"address"`
	City    string `bson:"city"`
}

type lineItemDoc struct {
	ProductCode string `bson:"productCode"`
	Title       string `bson:"title"`
	Price       string `bson:"price"`
	Quantity    int    `bson:"quantity"`
	Unit        string `bson:"unit,omitempty"`
	ImageLink   string `bson:"image_link,omitempty"`
}

type orderDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Customer  customerDoc          `bson:"customer"`
	Items     []lineItemDoc        `bson:"items"`
	Total     primitive.Decimal128 `bson:"total"`
	Timestamp string               `bson:"timestamp"`
	OrderType string               `bson:"orderType"`
	Status    string               `bson:"status"`
	User      primitive.ObjectID   `bson:"user"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func decimalPrice(d primitive.Decimal128) model.Price {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return model.Price{}
	}
	return model.FixedPrice(v)
}

func (d orderDoc) model() model.Order {
	o := model.Order{
		ID: d.ID.Hex(),
		Customer: model.Customer{
			Name:    d.Customer.Name,
			Phone:   d.Customer.Phone,
			Address: d.Customer.Address,
			City:    d.Customer.City,
		},
		Items:     make([]model.LineItem, len(d.Items)),
		Total:     decimalPrice(d.Total).Amount,
		Timestamp: d.Timestamp,
		Type:      model.FulfillmentType(d.OrderType),
		Status:    model.OrderStatus(d.Status),
		UserID:    d.User.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for i, it := range d.Items {
		o.Items[i] = model.LineItem{
			ProductCode: it.ProductCode,
			Title:       it.Title,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			ImageLink:   it.ImageLink,
		}
	}
	return o
}

// OrderRepo stores orders in the orders collection. Line items are
// embedded and money is Decimal128.
type OrderRepo struct{ c *mongo.Collection }

// NewOrderRepo binds the repository to db.
func NewOrderRepo(db *mongo.Database) *OrderRepo { return &OrderRepo{c: db.Collection("orders")} }

// EnsureIndexes creates the owner and recency indexes used by listings.
func (r *OrderRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

// orderFilter builds the query. An owner id that is not an ObjectID
// cannot own anything, so it matches no document rather than all.
func orderFilter(f repository.OrderFilter) bson.M {
	q := bson.M{}
	if f.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(f.UserID)
		if err != nil {
			q["_id"] = bson.M{"$exists": false}
		} else {
			q["user"] = oid
		}
	}
	if f.Type != "" {
		q["orderType"] = string(f.Type)
	}
	created := bson.M{}
	if !f.CreatedFrom.IsZero() {
		created["$gte"] = f.CreatedFrom
	}
	if !f.CreatedTo.IsZero() {
		created["$lte"] = f.CreatedTo
	}
	if len(created) > 0 {
		q["createdAt"] = created
	}
	return q
}

func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	owner, err := objectID(o.UserID)
	if err != nil {
		return err
	}
	total, err := primitive.ParseDecimal128(o.Total.String())
	if err != nil {
		return err
	}
	doc := orderDoc{
		Customer: customerDoc{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
			City:    o.Customer.City,
		},
		Items:     make([]lineItemDoc, len(o.Items)),
		Total:     total,
		Timestamp: o.Timestamp,
		OrderType: string(o.Type),
		Status:    string(o.Status),
		User:      owner,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for i, it := range o.Items {
		doc.Items[i] = lineItemDoc(it)
	}
	res, err := r.c.InsertOne(ctx, doc)
	if err != nil {
		return translate(err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (model.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Order{}, err
	}
	var d orderDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return model.Order{}, translate(err)
	}
	return d.model(), nil
}

func (r *OrderRepo) FindOne(ctx context.Context, f repository.OrderFilter) (model.Order, error) {
	orders, err := r.Find(ctx, f, repository.FindOptions{Limit: 1})
	if err != nil {
		return model.Order{}, err
	}
	if len(orders) == 0 {
		return model.Order{}, repository.ErrNotFound
	}
	return orders[0], nil
}

func (r *OrderRepo) Find(ctx context.Context, f repository.OrderFilter, opts repository.FindOptions) ([]model.Order, error) {
	cur, err := r.c.Find(ctx, orderFilter(f), findOptions(opts))
	if err != nil {
		return nil, err
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Order, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}

func (r *OrderRepo) Count(ctx context.Context, f repository.OrderFilter) (int64, error) {
	return r.c.CountDocuments(ctx, orderFilter(f))
}

// UpdateByID is a plain $set: concurrent writers race and the last one wins.
func (r *OrderRepo) UpdateByID(ctx context.Context, id string, upd repository.OrderUpdate) (model.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Order{}, err
	}
	set := bson.M{"updatedAt": upd.UpdatedAt}
	if upd.Status != nil {
		set["status"] = string(*upd.Status)
	}
	if upd.Type != nil {
		set["orderType"] = string(*upd.Type)
	}
	var d orderDoc
	if err := r.c.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, returnAfter()).Decode(&d); err != nil {
		return model.Order{}, translate(err)
	}
	return d.model(), nil
}

func (r *OrderRepo) DeleteByID(ctx context.Context, id string) error {
	return deleteByID(ctx, r.c, id)
}
