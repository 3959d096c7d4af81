package reduce

import (
	"sync/atomic"

	"github.com/2x3systems/goknot/libknot/poly"
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
)

// MemoStore caches reduction values keyed by canonical PD code.
type MemoStore interface {

	// Get returns the value stored for the given PD code, if any.
	Get(code string) (poly.Poly, bool)

	// Put stores value under code unless a value is already present, and returns the value now stored.
	//
	// When two callers race to store the same code, the first one wins and both see its value.
	Put(code string, value poly.Poly) poly.Poly
}

// Memo is a MemoStore for a single reduction call stack.  It is not safe for concurrent use.
type Memo struct {
	known map[string]poly.Poly
}

func NewMemo() *Memo {
	return &Memo{
		known: make(map[string]poly.Poly),
	}
}

func (memo *Memo) Get(code string) (poly.Poly, bool) {
	value, ok := memo.known[code]
	return value, ok
}

func (memo *Memo) Put(code string, value poly.Poly) poly.Poly {
	if existing, ok := memo.known[code]; ok {
		return existing
	}
	memo.known[code] = value
	return value
}

// Len returns the number of stored values.
func (memo *Memo) Len() int {
	return len(memo.known)
}

// SharedMemo is a MemoStore backed by an in-memory badger db, safe for use by concurrent reductions
// (e.g. matrix mode workers whose sub-chains reduce to identical diagrams).
//
// Values are stored in canonical string form.  Call Close() when done.
type SharedMemo struct {
	db     *badger.DB
	hits   atomic.Int64
	misses atomic.Int64
}

func NewSharedMemo() (*SharedMemo, error) {
	dbOpts := badger.DefaultOptions("").WithInMemory(true)
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrap(err, "opening shared memo")
	}
	return &SharedMemo{
		db: db,
	}, nil
}

func (memo *SharedMemo) Get(code string) (poly.Poly, bool) {
	var value poly.Poly
	found := false

	err := memo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(code))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value, err = poly.Parse(string(val))
			found = err == nil
			return err
		})
	})
	if err != nil && err != badger.ErrKeyNotFound {
		panic(err)
	}

	if found {
		memo.hits.Add(1)
	} else {
		memo.misses.Add(1)
	}
	return value, found
}

func (memo *SharedMemo) Put(code string, value poly.Poly) poly.Poly {
	key := []byte(code)
	for {
		stored := value
		err := memo.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if err == nil {
				return item.Value(func(val []byte) error {
					stored, err = poly.Parse(string(val))
					return err
				})
			} else if err == badger.ErrKeyNotFound {
				return txn.Set(key, []byte(value.String()))
			}
			return err
		})
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			panic(err)
		}
		return stored
	}
}

// Stats returns the number of lookups that found and did not find a value.
func (memo *SharedMemo) Stats() (hits, misses int64) {
	return memo.hits.Load(), memo.misses.Load()
}

func (memo *SharedMemo) Close() {
	if memo.db != nil {
		memo.db.Close()
		memo.db = nil
	}
}
