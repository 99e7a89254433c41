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

type productDoc struct {
	ID              primitive.ObjectID    `bson:"_id,omitempty"`
	Code            string                `bson:"productCode"`
	TitleEnglish    string                `bson:"title_english"`
	DescEnglish     string                `bson:"desc_english"`
	CategoryEnglish string                `bson:"category_english"`
	PriceEnglish    string                `bson:"price_english"`
	UnitEnglish     string                `bson:"unit_english"`
	TitleUrdu       string                `bson:"title_urdu"`
	DescUrdu        string                `bson:"desc_urdu"`
	CategoryUrdu    string                `bson:"category_urdu"`
	PriceUrdu       string                `bson:"price_urdu"`
	UnitUrdu        string                `bson:"unit_urdu"`
	ImageLink       string                `bson:"image_link"`
	Price           *primitive.Decimal128 `bson:"price"`
	CreatedAt       time.Time             `bson:"createdAt"`
	UpdatedAt       time.Time             `bson:"updatedAt"`
}

func newProductDoc(p model.Product) productDoc {
	d := productDoc{
		Code:            p.Code,
		TitleEnglish:    p.TitleEnglish,
		DescEnglish:     p.DescEnglish,
		CategoryEnglish: p.CategoryEnglish,
		PriceEnglish:    p.PriceEnglish,
		UnitEnglish:     p.UnitEnglish,
		TitleUrdu:       p.TitleUrdu,
		DescUrdu:        p.DescUrdu,
		CategoryUrdu:    p.CategoryUrdu,
		PriceUrdu:       p.PriceUrdu,
		UnitUrdu:        p.UnitUrdu,
		ImageLink:       p.ImageLink,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Price.Fixed {
		if dec, err := primitive.ParseDecimal128(p.Price.Amount.String()); err == nil {
			d.Price = &dec
		}
	}
	return d
}

func (d productDoc) model() model.Product {
	p := model.Product{
		ID:              d.ID.Hex(),
		Code:            d.Code,
		TitleEnglish:    d.TitleEnglish,
		DescEnglish:     d.DescEnglish,
		CategoryEnglish: d.CategoryEnglish,
		PriceEnglish:    d.PriceEnglish,
		UnitEnglish:     d.UnitEnglish,
		TitleUrdu:       d.TitleUrdu,
		DescUrdu:        d.DescUrdu,
		CategoryUrdu:    d.CategoryUrdu,
		PriceUrdu:       d.PriceUrdu,
		UnitUrdu:        d.UnitUrdu,
		ImageLink:       d.ImageLink,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.Price != nil {
		p.Price = decimalPrice(*d.Price)
	}
	return p
}

// ProductRepo stores the catalogue in the products collection.
type ProductRepo struct{ c *mongo.Collection }

// NewProductRepo binds the repository to db.
func NewProductRepo(db *mongo.Database) *ProductRepo { return &ProductRepo{c: db.Collection("products")} }

// EnsureIndexes creates the unique productCode index.
func (r *ProductRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "productCode", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category_english", Value: 1}}},
	})
	return err
}

func productFilter(f repository.ProductFilter) bson.M {
	q := bson.M{}
	if f.Code != "" {
		q["productCode"] = f.Code
	}
	if f.CategoryEnglish != "" {
		q["category_english"] = f.CategoryEnglish
	}
	return q
}

func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.c.InsertOne(ctx, newProductDoc(*p))
	if err != nil {
		return translate(err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (model.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Product{}, err
	}
	var d productDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return model.Product{}, translate(err)
	}
	return d.model(), nil
}

func (r *ProductRepo) FindOne(ctx context.Context, f repository.ProductFilter) (model.Product, error) {
	var d productDoc
	if err := r.c.FindOne(ctx, productFilter(f), options.FindOne().SetSort(newestFirst)).Decode(&d); err != nil {
		return model.Product{}, translate(err)
	}
	return d.model(), nil
}

func (r *ProductRepo) Find(ctx context.Context, f repository.ProductFilter, opts repository.FindOptions) ([]model.Product, error) {
	cur, err := r.c.Find(ctx, productFilter(f), findOptions(opts))
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Product, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}

func (r *ProductRepo) Count(ctx context.Context, f repository.ProductFilter) (int64, error) {
	return r.c.CountDocuments(ctx, productFilter(f))
}

// UpdateByID replaces the mutable fields and returns the stored result.
func (r *ProductRepo) UpdateByID(ctx context.Context, id string, p model.Product) (model.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Product{}, err
	}
	d := newProductDoc(p)
	set := bson.M{
		"title_english":    d.TitleEnglish,
		"desc_english":     d.DescEnglish,
		"category_english": d.CategoryEnglish,
		"price_english":    d.PriceEnglish,
		"unit_english":     d.UnitEnglish,
		"title_urdu":       d.TitleUrdu,
		"desc_urdu":        d.DescUrdu,
		"category_urdu":    d.CategoryUrdu,
		"price_urdu":       d.PriceUrdu,
		"unit_urdu":        d.UnitUrdu,
		"image_link":       d.ImageLink,
		"price":            d.Price,
		"updatedAt":        d.UpdatedAt,
	}
	var out productDoc
	if err := r.c.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, returnAfter()).Decode(&out); err != nil {
		return model.Product{}, translate(err)
	}
	return out.model(), nil
}

func (r *ProductRepo) DeleteByID(ctx context.Context, id string) error {
	return deleteByID(ctx, r.c, id)
}
