package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
	"github.com/iliyamo/distributor-orders/internal/utils"
)

// productRow mirrors the 'products' table; a NULL price means on request.
type productRow struct {
	ID              string              `db:"id"`
	Code            string              `db:"product_code"`
	TitleEnglish    string              `db:"title_english"`
	DescEnglish     string              `db:"desc_english"`
	CategoryEnglish string              `db:"category_english"`
	PriceEnglish    string              `db:"price_english"`
	UnitEnglish     string              `db:"unit_english"`
	TitleUrdu       string              `db:"title_urdu"`
	DescUrdu        string              `db:"desc_urdu"`
	CategoryUrdu    string              `db:"category_urdu"`
	PriceUrdu       string              `db:"price_urdu"`
	UnitUrdu        string              `db:"unit_urdu"`
	ImageLink       string              `db:"image_link"`
	Price           decimal.NullDecimal `db:"price"`
	CreatedAt       time.Time           `db:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at"`
}

const productColumns = "id,product_code,title_english,desc_english,category_english,price_english,unit_english," +
	"title_urdu,desc_urdu,category_urdu,price_urdu,unit_urdu,image_link,price,created_at,updated_at"

func newProductRow(p model.Product) productRow {
	return productRow{
		ID:              p.ID,
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
		Price:           decimal.NullDecimal{Decimal: p.Price.Amount, Valid: p.Price.Fixed},
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r productRow) model() model.Product {
	p := model.Product{
		ID:              r.ID,
		Code:            r.Code,
		TitleEnglish:    r.TitleEnglish,
		DescEnglish:     r.DescEnglish,
		CategoryEnglish: r.CategoryEnglish,
		PriceEnglish:    r.PriceEnglish,
		UnitEnglish:     r.UnitEnglish,
		TitleUrdu:       r.TitleUrdu,
		DescUrdu:        r.DescUrdu,
		CategoryUrdu:    r.CategoryUrdu,
		PriceUrdu:       r.PriceUrdu,
		UnitUrdu:        r.UnitUrdu,
		ImageLink:       r.ImageLink,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Price.Valid {
		p.Price = model.FixedPrice(r.Price.Decimal)
	}
	return p
}

// ProductRepo stores the catalogue in the products table.
type ProductRepo struct{ DB *sqlx.DB }

// NewProductRepo constructs a ProductRepo with the given DB handle.
func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{DB: db} }

func productWhere(f repository.ProductFilter) *where {
	w := &where{}
	if f.Code != "" {
		w.add("product_code=?", f.Code)
	}
	if f.CategoryEnglish != "" {
		w.add("category_english=?", f.CategoryEnglish)
	}
	return w
}

func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	row := newProductRow(*p)
	row.ID = utils.NewSnowflakeID()
	_, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES
		 (:id,:product_code,:title_english,:desc_english,:category_english,:price_english,:unit_english,
		  :title_urdu,:desc_urdu,:category_urdu,:price_urdu,:unit_urdu,:image_link,:price,:created_at,:updated_at)`,
		row)
	if err != nil {
		return translate(err)
	}
	p.ID = row.ID
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (model.Product, error) {
	var row productRow
	if err := r.DB.GetContext(ctx, &row, "SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id); err != nil {
		return model.Product{}, translate(err)
	}
	return row.model(), nil
}

func (r *ProductRepo) FindOne(ctx context.Context, f repository.ProductFilter) (model.Product, error) {
	products, err := r.Find(ctx, f, repository.FindOptions{Limit: 1})
	if err != nil {
		return model.Product{}, err
	}
	if len(products) == 0 {
		return model.Product{}, repository.ErrNotFound
	}
	return products[0], nil
}

func (r *ProductRepo) Find(ctx context.Context, f repository.ProductFilter, opts repository.FindOptions) ([]model.Product, error) {
	w := productWhere(f)
	q, args := page("SELECT "+productColumns+" FROM products"+w.String(), opts, w.args)
	var rows []productRow
	if err := r.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]model.Product, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

func (r *ProductRepo) Count(ctx context.Context, f repository.ProductFilter) (int64, error) {
	w := productWhere(f)
	var n int64
	err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM products"+w.String(), w.args...)
	return n, err
}

// UpdateByID replaces the mutable columns; product_code and created_at are kept.
func (r *ProductRepo) UpdateByID(ctx context.Context, id string, p model.Product) (model.Product, error) {
	row := newProductRow(p)
	row.ID = id
	_, err := r.DB.NamedExecContext(ctx, `UPDATE products SET
		title_english=:title_english, desc_english=:desc_english, category_english=:category_english,
		price_english=:price_english, unit_english=:unit_english,
		title_urdu=:title_urdu, desc_urdu=:desc_urdu, category_urdu=:category_urdu,
		price_urdu=:price_urdu, unit_urdu=:unit_urdu,
		image_link=:image_link, price=:price, updated_at=:updated_at
		WHERE id=:id`, row)
	if err != nil {
		return model.Product{}, translate(err)
	}
	return r.FindByID(ctx, id)
}

func (r *ProductRepo) DeleteByID(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "products", id)
}
