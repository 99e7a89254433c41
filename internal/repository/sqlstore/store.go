// Package sqlstore implements the repositories on MySQL through sqlx.
// Row ids are snowflake strings so they sort by creation time like the
// document store's ObjectIDs.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/distributor-orders/internal/repository"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// New creates the tables when missing and returns the repositories.
func New(ctx context.Context, db *sqlx.DB) (repository.Store, error) {
	if err := EnsureSchema(ctx, db); err != nil {
		return repository.Store{}, err
	}
	return repository.Store{
		Users:    NewUserRepo(db),
		Products: NewProductRepo(db),
		Orders:   NewOrderRepo(db),
		Close:    func(context.Context) error { return db.Close() },
	}, nil
}

// EnsureSchema creates the tables if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS users (
  id            VARCHAR(32)  NOT NULL PRIMARY KEY,
  name          VARCHAR(100) NOT NULL,
  phone         VARCHAR(20)  NOT NULL,
  email         VARCHAR(191) NULL,
  password_hash VARCHAR(100) NOT NULL,
  role          VARCHAR(20)  NOT NULL,
  address       VARCHAR(200) NOT NULL DEFAULT '',
  city          VARCHAR(30)  NOT NULL DEFAULT '',
  business_name VARCHAR(100) NOT NULL DEFAULT '',
  refresh_token VARCHAR(64)  NULL,
  joining_date  DATETIME(6)  NOT NULL,
  created_at    DATETIME(6)  NOT NULL,
  updated_at    DATETIME(6)  NOT NULL,
  UNIQUE KEY uq_users_phone (phone),
  UNIQUE KEY uq_users_email (email),
  KEY idx_users_role (role)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
CREATE TABLE IF NOT EXISTS products (
  id               VARCHAR(32)    NOT NULL PRIMARY KEY,
  product_code     VARCHAR(64)    NOT NULL,
  title_english    VARCHAR(255)   NOT NULL,
  desc_english     TEXT           NOT NULL,
  category_english VARCHAR(100)   NOT NULL,
  price_english    VARCHAR(64)    NOT NULL,
  unit_english     VARCHAR(32)    NOT NULL,
  title_urdu       VARCHAR(255)   NOT NULL,
  desc_urdu        TEXT           NOT NULL,
  category_urdu    VARCHAR(100)   NOT NULL,
  price_urdu       VARCHAR(64)    NOT NULL,
  unit_urdu        VARCHAR(32)    NOT NULL,
  image_link       VARCHAR(512)   NOT NULL,
  price            DECIMAL(14,2)  NULL,
  created_at       DATETIME(6)    NOT NULL,
  updated_at       DATETIME(6)    NOT NULL,
  UNIQUE KEY uq_products_code (product_code),
  KEY idx_products_category (category_english)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
CREATE TABLE IF NOT EXISTS orders (
  id               VARCHAR(32)    NOT NULL PRIMARY KEY,
  customer_name    VARCHAR(100)   NOT NULL,
  customer_phone   VARCHAR(20)    NOT NULL,
  customer_address VARCHAR(200)   NOT NULL,
  customer_city    VARCHAR(30)    NOT NULL,
  items            JSON           NOT NULL,
  total            DECIMAL(14,2)  NOT NULL,
  placed_at        VARCHAR(64)    NOT NULL,
  order_type       VARCHAR(16)    NOT NULL,
  status           VARCHAR(16)    NOT NULL,
  user_id          VARCHAR(32)    NOT NULL,
  created_at       DATETIME(6)    NOT NULL,
  updated_at       DATETIME(6)    NOT NULL,
  KEY idx_orders_user_created (user_id, created_at),
  KEY idx_orders_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return repository.ErrConflict
	}
	return err
}

// where accumulates AND-ed conditions and their positional args.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, arg)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page appends the newest-first ordering and LIMIT/OFFSET clause.
func page(q string, opts repository.FindOptions, args []any) (string, []any) {
	q += " ORDER BY created_at DESC, id DESC"
	switch {
	case opts.Limit > 0:
		q += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, max(opts.Skip, 0))
	case opts.Skip > 0:
		// MySQL has no OFFSET without LIMIT
		q += " LIMIT 18446744073709551615 OFFSET ?"
		args = append(args, opts.Skip)
	}
	return q, args
}

// set accumulates assignments for an UPDATE statement.
type set struct {
	cols []string
	args []any
}

func (s *set) add(col string, arg any) {
	s.cols = append(s.cols, col+"=?")
	s.args = append(s.args, arg)
}

func (s *set) String() string { return strings.Join(s.cols, ",") }

func deleteByID(ctx context.Context, db *sqlx.DB, table, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
