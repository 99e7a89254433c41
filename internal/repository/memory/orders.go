package memory

import (
	"context"
	"time"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
)

// OrderRepo keeps orders in process memory.
type OrderRepo struct{ t *table[model.Order] }

// NewOrderRepo returns an empty repository.
func NewOrderRepo() *OrderRepo { return &OrderRepo{t: newTable[model.Order]()} }

func orderCreated(o model.Order) time.Time { return o.CreatedAt }

func cloneOrder(o model.Order) model.Order {
	o.Items = append([]model.LineItem(nil), o.Items...)
	return o
}

func (r *OrderRepo) Create(_ context.Context, o *model.Order) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	o.ID = newID()
	r.t.seq++
	r.t.rows[o.ID] = &entry[model.Order]{seq: r.t.seq, val: cloneOrder(*o)}
	return nil
}

func (r *OrderRepo) FindByID(_ context.Context, id string) (model.Order, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	e, ok := r.t.rows[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return cloneOrder(e.val), nil
}

func (r *OrderRepo) FindOne(_ context.Context, f repository.OrderFilter) (model.Order, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	rows := r.t.sorted(f.Matches, orderCreated)
	if len(rows) == 0 {
		return model.Order{}, repository.ErrNotFound
	}
	return cloneOrder(rows[0]), nil
}

func (r *OrderRepo) Find(_ context.Context, f repository.OrderFilter, opts repository.FindOptions) ([]model.Order, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	rows := page(r.t.sorted(f.Matches, orderCreated), opts)
	for i := range rows {
		rows[i] = cloneOrder(rows[i])
	}
	return rows, nil
}

func (r *OrderRepo) Count(_ context.Context, f repository.OrderFilter) (int64, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return int64(len(r.t.sorted(f.Matches, orderCreated))), nil
}

func (r *OrderRepo) UpdateByID(_ context.Context, id string, upd repository.OrderUpdate) (model.Order, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	e, ok := r.t.rows[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	if upd.Status != nil {
		e.val.Status = *upd.Status
	}
	if upd.Type != nil {
		e.val.Type = *upd.Type
	}
	e.val.UpdatedAt = upd.UpdatedAt
	return cloneOrder(e.val), nil
}

func (r *OrderRepo) DeleteByID(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.t.rows, id)
	return nil
}
