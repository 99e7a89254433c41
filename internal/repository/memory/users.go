package memory

import (
	"context"
	"time"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
)

// UserRepo keeps accounts in process memory and enforces the same
// phone and email uniqueness as the database stores.
type UserRepo struct{ t *table[model.User] }

// NewUserRepo returns an empty repository.
func NewUserRepo() *UserRepo { return &UserRepo{t: newTable[model.User]()} }

func userMatches(f repository.UserFilter) func(model.User) bool {
	return func(u model.User) bool {
		if f.Phone != "" && u.Phone != f.Phone {
			return false
		}
		if f.Email != "" && u.Email != f.Email {
			return false
		}
		if f.Role != "" && u.Role != f.Role {
			return false
		}
		return true
	}
}

func userCreated(u model.User) time.Time { return u.CreatedAt }

// taken reports whether phone or email belongs to a user other than id.
func (r *UserRepo) taken(id, phone, email string) bool {
	for k, e := range r.t.rows {
		if k == id {
			continue
		}
		if e.val.Phone == phone || (email != "" && e.val.Email == email) {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if r.taken("", u.Phone, u.Email) {
		return repository.ErrConflict
	}
	u.ID = newID()
	r.t.seq++
	r.t.rows[u.ID] = &entry[model.User]{seq: r.t.seq, val: *u}
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id string) (model.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	e, ok := r.t.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return e.val, nil
}

func (r *UserRepo) FindOne(_ context.Context, f repository.UserFilter) (model.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	rows := r.t.sorted(userMatches(f), userCreated)
	if len(rows) == 0 {
		return model.User{}, repository.ErrNotFound
	}
	return rows[0], nil
}

func (r *UserRepo) Find(_ context.Context, f repository.UserFilter, opts repository.FindOptions) ([]model.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return page(r.t.sorted(userMatches(f), userCreated), opts), nil
}

func (r *UserRepo) Count(_ context.Context, f repository.UserFilter) (int64, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return int64(len(r.t.sorted(userMatches(f), userCreated))), nil
}

func (r *UserRepo) UpdateByID(_ context.Context, id string, upd repository.UserUpdate) (model.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	e, ok := r.t.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	u := e.val
	set(&u.Name, upd.Name)
	set(&u.Phone, upd.Phone)
	set(&u.Email, upd.Email)
	set(&u.PasswordHash, upd.PasswordHash)
	set(&u.Address, upd.Address)
	set(&u.City, upd.City)
	set(&u.BusinessName, upd.BusinessName)
	set(&u.RefreshTokenHash, upd.RefreshTokenHash)
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if r.taken(id, u.Phone, u.Email) {
		return model.User{}, repository.ErrConflict
	}
	u.UpdatedAt = time.Now().UTC()
	e.val = u
	return u, nil
}

func (r *UserRepo) DeleteByID(_ context.Context, id string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.t.rows, id)
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
