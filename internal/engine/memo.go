package engine

import (
	"context"
	"fmt"

	"github.com/tidwall/tinylru"

	"github.com/roach88/kindseq/internal/ir"
	"github.com/roach88/kindseq/internal/store"
)

// DefaultCacheSize is the default number of results kept in memory.
const DefaultCacheSize = 256

// memoHit is what the memo table holds per key.
type memoHit struct {
	value Value
	seq   int64
}

// memo is the two-level memo table: a bounded in-memory LRU in front of
// an optional persistent store. The store is the source of truth; the LRU
// only saves a query and a decode.
type memo struct {
	lru   tinylru.LRU
	store *store.Store
}

func newMemo(size int, st *store.Store) *memo {
	if size < 1 {
		size = DefaultCacheSize
	}
	m := &memo{store: st}
	m.lru.Resize(size)
	return m
}

// get looks key up in the LRU, then in the store. A store hit is promoted
// into the LRU.
func (m *memo) get(ctx context.Context, key string) (memoHit, bool, error) {
	if v, ok := m.lru.Get(key); ok {
		return v.(memoHit), true, nil
	}
	if m.store == nil {
		return memoHit{}, false, nil
	}

	entry, found, err := m.store.GetResult(ctx, key)
	if err != nil || !found {
		return memoHit{}, false, err
	}
	value, err := DecodeValue(entry.Result)
	if err != nil {
		return memoHit{}, false, fmt.Errorf("memo row %s: %w", key, err)
	}

	hit := memoHit{value: value, seq: entry.Seq}
	m.lru.Set(key, hit)
	return hit, true, nil
}

// put records a freshly computed value. The store keeps the first row for
// a key, so a concurrent writer cannot replace an existing result.
func (m *memo) put(ctx context.Context, entry ir.MemoEntry, value Value) error {
	m.lru.Set(entry.Key, memoHit{value: value, seq: entry.Seq})
	if m.store == nil {
		return nil
	}
	if _, err := m.store.PutResult(ctx, entry); err != nil {
		return err
	}
	return nil
}

func (m *memo) len() int {
	return m.lru.Len()
}
