package libmotif

import (
	"bytes"
	"hash/maphash"
	"sync"

	"github.com/fine-structures/ecomotif/motifs"
)

type dropDupes struct {
	mu        sync.Mutex
	hashMap   map[uint64][]byte
	hasher    maphash.Hash
	bufPool   []byte
	bufPoolSz int
	opts      DropDupeOpts
}

const DefaultPoolSz = 32 * 1024

type DropDupeOpts struct {
	PoolSz int // 0 denotes DefaultPoolSz (32k)
}

// NewDropDupes returns a memory resident MotifAdder that accepts each distinct triangle once,
// regardless of the order of its nodes.
func NewDropDupes(opts DropDupeOpts) motifs.MotifAdder {
	if opts.PoolSz <= 0 {
		opts.PoolSz = DefaultPoolSz
	}
	return &dropDupes{
		hashMap: make(map[uint64][]byte),
		opts:    opts,
	}
}

func (dd *dropDupes) TryAddMotif(M motifs.Motif) bool {
	var keyBuf [256]byte
	Mkey := M.AppendKey(keyBuf[:0])

	dd.mu.Lock()
	defer dd.mu.Unlock()

	dd.hasher.Reset()
	dd.hasher.Write(Mkey)
	hash := dd.hasher.Sum64()

	existing, found := dd.hashMap[hash]
	for found {
		if bytes.Equal(existing, Mkey) {
			return false
		}
		hash++
		existing, found = dd.hashMap[hash]
	}

	// If we've gotten here, it means this is a new entry.
	// Place a copy of the key in our backing buf (in the heap).
	// If we run out of space in our pool, we start a new pool
	pos := dd.bufPoolSz
	itemLen := len(Mkey)
	if pos+itemLen > cap(dd.bufPool) {
		allocSz := max(dd.opts.PoolSz, itemLen)
		dd.bufPool = make([]byte, allocSz)
		dd.bufPoolSz = 0
		pos = 0
	}

	dd.hashMap[hash] = append(dd.bufPool[pos:pos], Mkey...)
	dd.bufPoolSz += itemLen
	return true
}

// UniqueMotifs returns one canonical motif per distinct triangle in M, in order of first appearance.
func UniqueMotifs(M []motifs.Motif) []motifs.Motif {
	return motifs.StreamMotifs(M).
		Canonize().
		AddTo(NewDropDupes(DropDupeOpts{})).
		Collect()
}
