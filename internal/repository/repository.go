package repository

import (
	"context"
	"time"

	"github.com/iliyamo/distributor-orders/internal/model"
)

// FindOptions controls paging of Find calls. Results are always ordered
// newest first by creation time. Limit <= 0 means no limit.
type FindOptions struct {
	Skip  int
	Limit int
}

// UserFilter selects users. Empty fields do not constrain.
type UserFilter struct {
	Phone string
	Email string
	Role  model.Role
}

// UserUpdate lists the mutable user fields; nil pointers are left untouched.
type UserUpdate struct {
	Name             *string
	Phone            *string
	Email            *string
	PasswordHash     *string
	Role             *model.Role
	Address          *string
	City             *string
	BusinessName     *string
	RefreshTokenHash *string
}

// UserRepository persists accounts. Phone and non-empty email are unique.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindOne(ctx context.Context, f UserFilter) (model.User, error)
	Find(ctx context.Context, f UserFilter, opts FindOptions) ([]model.User, error)
	Count(ctx context.Context, f UserFilter) (int64, error)
	UpdateByID(ctx context.Context, id string, upd UserUpdate) (model.User, error)
	DeleteByID(ctx context.Context, id string) error
}

// ProductFilter selects products.
type ProductFilter struct {
	Code            string
	CategoryEnglish string
}

// ProductRepository persists catalog entries. Code is unique.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (model.Product, error)
	FindOne(ctx context.Context, f ProductFilter) (model.Product, error)
	Find(ctx context.Context, f ProductFilter, opts FindOptions) ([]model.Product, error)
	Count(ctx context.Context, f ProductFilter) (int64, error)
	// UpdateByID replaces every mutable field of the stored product with p's.
	UpdateByID(ctx context.Context, id string, p model.Product) (model.Product, error)
	DeleteByID(ctx context.Context, id string) error
}

// OrderFilter selects orders. CreatedFrom/CreatedTo are inclusive bounds
// on the server-assigned creation time; zero values do not constrain.
type OrderFilter struct {
	UserID      string
	CreatedFrom time.Time
	CreatedTo   time.Time
	Type        model.FulfillmentType
}

// OrderUpdate lists the mutable order fields. UpdatedAt is always stamped.
type OrderUpdate struct {
	Status    *model.OrderStatus
	Type      *model.FulfillmentType
	UpdatedAt time.Time
}

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (model.Order, error)
	FindOne(ctx context.Context, f OrderFilter) (model.Order, error)
	Find(ctx context.Context, f OrderFilter, opts FindOptions) ([]model.Order, error)
	Count(ctx context.Context, f OrderFilter) (int64, error)
	UpdateByID(ctx context.Context, id string, upd OrderUpdate) (model.Order, error)
	DeleteByID(ctx context.Context, id string) error
}

// Store bundles the three repositories of one backend.
type Store struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
	// Close releases the backend's connections.
	Close func(ctx context.Context) error
}

// Matches reports whether o satisfies f. Backends that filter in memory
// use it so every backend agrees on the semantics.
func (f OrderFilter) Matches(o model.Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.Type != "" && o.Type != f.Type {
		return false
	}
	if !f.CreatedFrom.IsZero() && o.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && o.CreatedAt.After(f.CreatedTo) {
		return false
	}
	return true
}
