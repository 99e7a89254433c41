// Package memory is an in-process repository backend. It keeps the
// same uniqueness and ordering rules as the database backends and is
// used for tests and DB_DRIVER=memory development runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/iliyamo/distributor-orders/internal/repository"
)

// New returns a Store whose repositories share nothing but a clock.
func New() repository.Store {
	return repository.Store{
		Users:    NewUserRepo(),
		Products: NewProductRepo(),
		Orders:   NewOrderRepo(),
		Close:    func(context.Context) error { return nil },
	}
}

// entry keeps insertion order so records created within the same clock
// tick still sort deterministically.
type entry[T any] struct {
	seq uint64
	val T
}

type table[T any] struct {
	mu   sync.RWMutex
	rows map[string]*entry[T]
	seq  uint64
}

func newTable[T any]() *table[T] { return &table[T]{rows: make(map[string]*entry[T])} }

func newID() string { return ksuid.New().String() }

// sorted returns matching values newest first.
func (t *table[T]) sorted(match func(T) bool, created func(T) time.Time) []T {
	list := make([]*entry[T], 0, len(t.rows))
	for _, e := range t.rows {
		if match(e.val) {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		ci, cj := created(list[i].val), created(list[j].val)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return list[i].seq > list[j].seq
	})
	out := make([]T, len(list))
	for i, e := range list {
		out[i] = e.val
	}
	return out
}

func page[T any](rows []T, opts repository.FindOptions) []T {
	if opts.Skip > 0 {
		if opts.Skip >= len(rows) {
			return []T{}
		}
		rows = rows[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(rows) {
		rows = rows[:opts.Limit]
	}
	return rows
}
