package catalog

import (
	"io"
	"runtime"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/fine-structures/ecomotif/motifs"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey                  => CatalogState (MajorVers, MinorVers, NumMotifs)

	kMotifPrefix, <a> NUL <b> NUL <c> => (empty)       where a < b < c
	...

	kTracesPrefix, <network name>     => TracesLSM     tr(A^1), tr(A^2), ...
	...

Motif keys are canonical, so a triangle is stored once no matter which pivot found it or which network it came from.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kMotifPrefix  byte = 'M'
	kTracesPrefix byte = 'T'

	kMajorVers = 2024
	kMinorVers = 1

	kStateSz = 16
)

// CatalogState is the persisted header of a catalog, stored in protobuf wire format:
//
//	message CatalogState {
//	    uint32 MajorVers = 1;
//	    uint32 MinorVers = 2;
//	    uint64 NumMotifs = 3;
//	}
type CatalogState struct {
	MajorVers uint16
	MinorVers uint16
	NumMotifs uint64
}

const (
	kMajorVersField = 1
	kMinorVersField = 2
	kNumMotifsField = 3
)

func (state *CatalogState) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, kStateSz))
	fields := [...]struct {
		num uint64
		val uint64
	}{
		{kMajorVersField, uint64(state.MajorVers)},
		{kMinorVersField, uint64(state.MinorVers)},
		{kNumMotifsField, state.NumMotifs},
	}
	for _, field := range fields {
		if err := buf.EncodeVarint(field.num<<3 | proto.WireVarint); err != nil {
			return nil, err
		}
		if err := buf.EncodeVarint(field.val); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (state *CatalogState) Unmarshal(in []byte) error {
	*state = CatalogState{}

	buf := proto.NewBuffer(in)
	for {
		tag, err := buf.DecodeVarint()
		if err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil || tag&7 != proto.WireVarint {
			return motifs.ErrUnmarshal
		}
		val, err := buf.DecodeVarint()
		if err != nil {
			return motifs.ErrUnmarshal
		}
		switch tag >> 3 {
		case kMajorVersField:
			state.MajorVers = uint16(val)
		case kMinorVersField:
			state.MinorVers = uint16(val)
		case kNumMotifsField:
			state.NumMotifs = val
		}
	}

	if state.MajorVers == 0 {
		return motifs.ErrUnmarshal
	}
	return nil
}

// catalog is a badger wrapper for a motif catalog
type catalog struct {
	mu         sync.Mutex
	ctx        motifs.CatalogContext
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

// OpenCatalog opens a new or existing catalog and attaches it to the given context.
// An empty opts.DbPathName opens a fresh in-memory catalog.
func OpenCatalog(ctx motifs.CatalogContext, opts motifs.CatalogOpts) (motifs.Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(motifs.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %q", opts.DbPathName)
	}

	// Once the db is open, the catalog ctx is blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.state = CatalogState{
			MajorVers: kMajorVers,
			MinorVers: kMinorVers,
		}
		cat.stateDirty = !cat.readOnly
	}

	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrapf(motifs.ErrCatalogVersion, "found v%d.%d", cat.state.MajorVers, cat.state.MinorVers)
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(2).Infof("opened catalog %q with %d motifs", opts.DbPathName, cat.state.NumMotifs)
	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

func (cat *catalog) flushState() error {
	if !cat.stateDirty || cat.db == nil {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := cat.state.Marshal()
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

func (cat *catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil
	}

	err := cat.flushState()
	if closeErr := cat.db.Close(); err == nil {
		err = closeErr
	}
	cat.db = nil
	cat.ctx.DetachCatalog(cat)
	cat.ctx = nil
	return err
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) NumMotifs() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumMotifs)
}

func formMotifKey(M motifs.Motif) []byte {
	var keyBuf [256]byte
	key := append(keyBuf[:0], kMotifPrefix)
	return M.AppendKey(key)
}

func formTracesKey(network string) []byte {
	key := make([]byte, 0, 1+len(network))
	key = append(key, kTracesPrefix)
	return append(key, network...)
}

// TryAddMotif adds the canonical form of M if it is not already present.
// A read-only or closed catalog accepts nothing.
func (cat *catalog) TryAddMotif(M motifs.Motif) bool {
	if cat.readOnly {
		return false
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return false
	}

	key := formMotifKey(M)
	added := false
	err := cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // no-op since the key is already in the db
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		added = true
		return txn.Set(key, nil)
	})
	if err != nil {
		panic(err)
	}

	if added {
		cat.state.NumMotifs++
		cat.stateDirty = true
	}
	return added
}

// Select sends every motif in this catalog to onHit, in canonical key order.
//
// The caller owns onHit and closes it after Select returns.
func (cat *catalog) Select(onHit motifs.OnMotifHit) {
	cat.mu.Lock()
	db := cat.db
	cat.mu.Unlock()
	if db == nil {
		return
	}

	prefix := []byte{kMotifPrefix}

	txn := db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: false,
		Prefix:         prefix,
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().Key()
		M, err := motifs.MotifFromKey(key[1:])
		if err != nil {
			klog.Warningf("skipping bad catalog entry %q: %v", key, err)
			continue
		}
		onHit <- M
	}
}

func (cat *catalog) PutTraces(network string, TX motifs.Traces) error {
	if cat.readOnly {
		return motifs.ErrReadOnly
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return motifs.ErrBadCatalogParam
	}

	return cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(formTracesKey(network), TX.AppendTracesLSM(nil))
	})
}

func (cat *catalog) GetTraces(network string) (motifs.Traces, error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil, motifs.ErrBadCatalogParam
	}

	var TX motifs.Traces
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(formTracesKey(network))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return TX.InitFromTracesLSM(val, 0)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(motifs.ErrNotFound, "traces for %q", network)
	}
	return TX, err
}
