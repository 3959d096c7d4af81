package catalog

import (
	"runtime"
	"sync"

	"github.com/2x3systems/goknot/goknot"
	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => State

	Kind (byte), PD code  => Entry
	...

Kind is never 0, so the state key sorts before every entry.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kMajorVers = 2026
	kMinorVers = 1
)

// catalog is a badger db of invariant values keyed by invariant kind and canonical PD code.
type catalog struct {
	ctx        goknot.CatalogContext
	readOnly   bool
	mu         sync.Mutex
	stateDirty bool
	state      State
	db         *badger.DB
}

func OpenCatalog(ctx goknot.CatalogContext, opts goknot.CatalogOpts) (goknot.Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // writes are serialized by mu
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(goknot.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, we consider the catalog ctx blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = !cat.readOnly
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrapf(goknot.ErrIncompatibleFormat, "%d.%d", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(2).Infof("opened catalog %q (%v entries)", opts.DbPathName, cat.state.NumEntries)
	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *catalog) flushState() error {
	if !cat.stateDirty {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := proto.Marshal(&cat.state)
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

func formKey(kind goknot.Kind, pdCode string) []byte {
	key := make([]byte, 0, 1+len(pdCode))
	key = append(key, byte(kind))
	key = append(key, pdCode...)
	return key
}

func (cat *catalog) Lookup(kind goknot.Kind, pdCode string) (string, bool) {
	var entry Entry
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(formKey(kind, pdCode))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			klog.Warningf("catalog lookup %v %q: %v", kind, pdCode, err)
		}
		return "", false
	}
	return entry.Value, true
}

// Store records value for the given diagram unless a value is already present.
func (cat *catalog) Store(kind goknot.Kind, pdCode string, value string) error {
	if cat.readOnly {
		return goknot.ErrCatalogReadOnly
	}
	if kind <= goknot.Kind_nil {
		return errors.Wrapf(goknot.ErrBadCatalogParam, "kind %v", kind)
	}

	entry := Entry{
		Value:     value,
		Crossings: int32(countCrossings(pdCode)),
	}
	val, err := proto.Marshal(&entry)
	if err != nil {
		return err
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	key := formKey(kind, pdCode)
	added := false
	err = cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		added = true
		return txn.Set(key, val)
	})
	if err != nil {
		return err
	}

	if added {
		for int(kind) >= len(cat.state.NumEntries) {
			cat.state.NumEntries = append(cat.state.NumEntries, 0)
		}
		cat.state.NumEntries[kind]++
		cat.stateDirty = true
	}
	return nil
}

func (cat *catalog) NumEntries(kind goknot.Kind) int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if kind <= goknot.Kind_nil || int(kind) >= len(cat.state.NumEntries) {
		return 0
	}
	return cat.state.NumEntries[kind]
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	var err error
	if cat.db != nil {
		err = cat.flushState()
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return err
}

func countCrossings(pdCode string) int {
	n := 0
	for i := 0; i < len(pdCode); i++ {
		if pdCode[i] == 'X' {
			n++
		}
	}
	return n
}
