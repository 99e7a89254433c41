package sqlstore

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
	"github.com/iliyamo/distributor-orders/internal/utils"
)

// lineItems is stored in a JSON column.
type lineItems []model.LineItem

// Value encodes the items as a JSON array.
func (l lineItems) Value() (driver.Value, error) {
	if l == nil {
		l = lineItems{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan decodes the JSON column. NULL leaves the list nil.
func (l *lineItems) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return fmt.Errorf("lineItems: unsupported scan type %T", src)
}

// orderRow mirrors the 'orders' table.
type orderRow struct {
	ID              string          `db:"id"`
	CustomerName    string          `db:"customer_name"`
	CustomerPhone   string          `db:"customer_phone"`
	CustomerAddress string          `db:"customer_address"`
	CustomerCity    string          `db:"customer_city"`
	Items           lineItems       `db:"items"`
	Total           decimal.Decimal `db:"total"`
	PlacedAt        string          `db:"placed_at"`
	OrderType       string          `db:"order_type"`
	Status          string          `db:"status"`
	UserID          string          `db:"user_id"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

const orderColumns = "id,customer_name,customer_phone,customer_address,customer_city,items,total," +
	"placed_at,order_type,status,user_id,created_at,updated_at"

func (r orderRow) model() model.Order {
	return model.Order{
		ID: r.ID,
		Customer: model.Customer{
			Name:    r.CustomerName,
			Phone:   r.CustomerPhone,
			Address: r.CustomerAddress,
			City:    r.CustomerCity,
		},
		Items:     []model.LineItem(r.Items),
		Total:     r.Total,
		Timestamp: r.PlacedAt,
		Type:      model.FulfillmentType(r.OrderType),
		Status:    model.OrderStatus(r.Status),
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// OrderRepo stores orders in MySQL with the line items in a JSON column.
type OrderRepo struct{ DB *sqlx.DB }

// NewOrderRepo constructs an OrderRepo with the given DB handle.
func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{DB: db} }

func orderWhere(f repository.OrderFilter) *where {
	w := &where{}
	if f.UserID != "" {
		w.add("user_id=?", f.UserID)
	}
	if f.Type != "" {
		w.add("order_type=?", string(f.Type))
	}
	if !f.CreatedFrom.IsZero() {
		w.add("created_at>=?", f.CreatedFrom.UTC())
	}
	if !f.CreatedTo.IsZero() {
		w.add("created_at<=?", f.CreatedTo.UTC())
	}
	return w
}

func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	row := orderRow{
		ID:              utils.NewSnowflakeID(),
		CustomerName:    o.Customer.Name,
		CustomerPhone:   o.Customer.Phone,
		CustomerAddress: o.Customer.Address,
		CustomerCity:    o.Customer.City,
		Items:           lineItems(o.Items),
		Total:           o.Total,
		PlacedAt:        o.Timestamp,
		OrderType:       string(o.Type),
		Status:          string(o.Status),
		UserID:          o.UserID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	_, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES
		 (:id,:customer_name,:customer_phone,:customer_address,:customer_city,:items,:total,
		  :placed_at,:order_type,:status,:user_id,:created_at,:updated_at)`,
		row)
	if err != nil {
		return translate(err)
	}
	o.ID = row.ID
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (model.Order, error) {
	var row orderRow
	if err := r.DB.GetContext(ctx, &row, "SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1", id); err != nil {
		return model.Order{}, translate(err)
	}
	return row.model(), nil
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
	w := orderWhere(f)
	q, args := page("SELECT "+orderColumns+" FROM orders"+w.String(), opts, w.args)
	var rows []orderRow
	if err := r.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]model.Order, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

func (r *OrderRepo) Count(ctx context.Context, f repository.OrderFilter) (int64, error) {
	w := orderWhere(f)
	var n int64
	err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM orders"+w.String(), w.args...)
	return n, err
}

// UpdateByID is a single UPDATE: concurrent writers race and the last one wins.
func (r *OrderRepo) UpdateByID(ctx context.Context, id string, upd repository.OrderUpdate) (model.Order, error) {
	s := &set{}
	if upd.Status != nil {
		s.add("status", string(*upd.Status))
	}
	if upd.Type != nil {
		s.add("order_type", string(*upd.Type))
	}
	s.add("updated_at", upd.UpdatedAt.UTC())

	args := append(s.args, id)
	if _, err := r.DB.ExecContext(ctx, "UPDATE orders SET "+s.String()+" WHERE id=?", args...); err != nil {
		return model.Order{}, translate(err)
	}
	return r.FindByID(ctx, id)
}

func (r *OrderRepo) DeleteByID(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "orders", id)
}
