package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
	"github.com/iliyamo/distributor-orders/internal/utils"
)

// userRow mirrors the 'users' table. Empty email and refresh token are
// stored as NULL so the unique email key ignores them.
type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Phone        string         `db:"phone"`
	Email        sql.NullString `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Role         string         `db:"role"`
	Address      string         `db:"address"`
	City         string         `db:"city"`
	BusinessName string         `db:"business_name"`
	RefreshToken sql.NullString `db:"refresh_token"`
	JoiningDate  time.Time      `db:"joining_date"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

const userColumns = "id,name,phone,email,password_hash,role,address,city,business_name,refresh_token,joining_date,created_at,updated_at"

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r userRow) model() model.User {
	return model.User{
		ID:               r.ID,
		Name:             r.Name,
		Phone:            r.Phone,
		Email:            r.Email.String,
		PasswordHash:     r.PasswordHash,
		Role:             model.Role(r.Role),
		Address:          r.Address,
		City:             r.City,
		BusinessName:     r.BusinessName,
		RefreshTokenHash: r.RefreshToken.String,
		JoiningDate:      r.JoiningDate,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// UserRepo stores accounts in the users table. Empty email and refresh
// token columns are written as NULL so the unique email index ignores them.
type UserRepo struct{ DB *sqlx.DB }

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func userWhere(f repository.UserFilter) *where {
	w := &where{}
	if f.Phone != "" {
		w.add("phone=?", f.Phone)
	}
	if f.Email != "" {
		w.add("email=?", f.Email)
	}
	if f.Role != "" {
		w.add("role=?", string(f.Role))
	}
	return w
}

// Create inserts u and assigns its ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	row := userRow{
		ID:           utils.NewSnowflakeID(),
		Name:         u.Name,
		Phone:        u.Phone,
		Email:        nullable(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Address:      u.Address,
		City:         u.City,
		BusinessName: u.BusinessName,
		RefreshToken: nullable(u.RefreshTokenHash),
		JoiningDate:  u.JoiningDate,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	_, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES
		 (:id,:name,:phone,:email,:password_hash,:role,:address,:city,:business_name,:refresh_token,:joining_date,:created_at,:updated_at)`,
		row)
	if err != nil {
		return translate(err)
	}
	u.ID = row.ID
	return nil
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (model.User, error) {
	var row userRow
	if err := r.DB.GetContext(ctx, &row, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id); err != nil {
		return model.User{}, translate(err)
	}
	return row.model(), nil
}

func (r *UserRepo) FindOne(ctx context.Context, f repository.UserFilter) (model.User, error) {
	users, err := r.Find(ctx, f, repository.FindOptions{Limit: 1})
	if err != nil {
		return model.User{}, err
	}
	if len(users) == 0 {
		return model.User{}, repository.ErrNotFound
	}
	return users[0], nil
}

func (r *UserRepo) Find(ctx context.Context, f repository.UserFilter, opts repository.FindOptions) ([]model.User, error) {
	w := userWhere(f)
	q, args := page("SELECT "+userColumns+" FROM users"+w.String(), opts, w.args)
	var rows []userRow
	if err := r.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]model.User, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

func (r *UserRepo) Count(ctx context.Context, f repository.UserFilter) (int64, error) {
	w := userWhere(f)
	var n int64
	err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM users"+w.String(), w.args...)
	return n, err
}

func (r *UserRepo) UpdateByID(ctx context.Context, id string, upd repository.UserUpdate) (model.User, error) {
	s := &set{}
	str := func(col string, v *string) {
		if v != nil {
			s.add(col, *v)
		}
	}
	str("name", upd.Name)
	str("phone", upd.Phone)
	str("password_hash", upd.PasswordHash)
	str("address", upd.Address)
	str("city", upd.City)
	str("business_name", upd.BusinessName)
	if upd.Email != nil {
		s.add("email", nullable(*upd.Email))
	}
	if upd.RefreshTokenHash != nil {
		s.add("refresh_token", nullable(*upd.RefreshTokenHash))
	}
	if upd.Role != nil {
		s.add("role", string(*upd.Role))
	}
	s.add("updated_at", time.Now().UTC())

	args := append(s.args, id)
	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET "+s.String()+" WHERE id=?", args...); err != nil {
		return model.User{}, translate(err)
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepo) DeleteByID(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "users", id)
}
