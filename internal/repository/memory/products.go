package memory

import (
	"context"
	"time"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
)

// ProductRepo keeps the catalogue in process memory.
type ProductRepo struct{ t *table[model.Product] }

// NewProductRepo returns an empty repository.
func NewProductRepo() *ProductRepo { return &ProductRepo{t: newTable[model.Product]()} }

func productMatches(f repository.ProductFilter) func(model.Product) bool {
	return func(p model.Product) bool {
		if f.Code != "" && p.Code != f.Code {
			return false
		}
		if f.CategoryEnglish != "" && p.CategoryEnglish != f.CategoryEnglish {
			return false
		}
		return true
	}
}

func productCreated(p model.Product) time.Time { return p.CreatedAt }

func (r *ProductRepo) Create(_ context.Context, p *model.Product) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	for _, e := range r.t.rows {
		if e.val.Code == p.Code {
			return repository.ErrConflict
		}
	}
	p.ID = newID()
	r.t.seq++
	r.t.rows[p.ID] = &entry[model.Product]{seq: r.t.seq, val: *p}
	return nil
}

func (r *ProductRepo) FindByID(_ context.Context, id string) (model.Product, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	e, ok := r.t.rows[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return e.val, nil
}

func (r *ProductRepo) FindOne(_ context.Context, f repository.ProductFilter) (model.Product, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	rows := r.t.sorted(productMatches(f), productCreated)
	if len(rows) == 0 {
		return model.Product{}, repository.ErrNotFound
	}
	return rows[0], nil
}

func (r *ProductRepo) Find(_ context.Context, f repository.ProductFilter, opts repository.FindOptions) ([]model.Product, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return page(r.t.sorted(productMatches(f), productCreated), opts), nil
}

func (r *ProductRepo) Count(_ context.Context, f repository.ProductFilter) (int64, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return int64(len(r.t.sorted(productMatches(f), productCreated))), nil
}

func (r *ProductRepo) UpdateByID(_ context.Context, id string, p model.Product) (model.Product, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	e, ok := r.t.rows[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	p.ID = id
	p.Code = e.val.Code
	p.CreatedAt = e.val.CreatedAt
	e.val = p
	return p, nil
}

func (r *ProductRepo) DeleteByID(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.t.rows, id)
	return nil
}
