// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package blobcache keeps inflated chunk payloads so that a compressed chunk
// met more than once is only inflated once. A size-bounded memory tier is
// always present. A pebble database on disk can back it, so that the work
// survives between runs.
//
// A Cache is safe for concurrent use by multiple goroutines.
package blobcache

import (
	"encoding/binary"
	"errors"
	"hash/maphash"
	"log/slog"
	"sync"

	"github.com/cockroachdb/pebble/v2"
	"github.com/dgryski/go-tinylfu"
)

// Payloads are assumed to be about this big when sizing the memory tier
const typicalPayload = 64 << 10

type Cache struct {
	mu      sync.Mutex
	mem     *tinylfu.T[uint64, []byte]
	maxBlob int // larger payloads skip the memory tier

	db *pebble.DB
}

var seed = maphash.MakeSeed()

func hasher(k uint64) uint64 {
	return maphash.Comparable(seed, k)
}

// New returns a memory-only cache holding roughly budget bytes.
func New(budget int) *Cache {
	n := max(budget/typicalPayload, 64)
	return &Cache{
		mem:     tinylfu.New[uint64, []byte](n, n*10, hasher),
		maxBlob: max(budget/16, typicalPayload),
	}
}

// Open is like New, but also keeps payloads in a pebble database in dir.
func Open(budget int, dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	c := New(budget)
	c.db = db
	return c, nil
}

func dbKey(key uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte("blob:"), key)
}

// Get returns a payload that must not be modified.
func (c *Cache) Get(key uint64) ([]byte, bool) {
	c.mu.Lock()
	got, ok := c.mem.Get(key)
	c.mu.Unlock()
	if ok || c.db == nil {
		return got, ok
	}

	val, closer, err := c.db.Get(dbKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false
	} else if err != nil {
		slog.Warn("blobcacheReadError", "key", key, "err", err)
		return nil, false
	}
	got = append([]byte(nil), val...) // val is only valid until Close
	closer.Close()
	c.addMem(key, got)
	return got, true
}

// Add stores a payload, which must not be modified afterwards.
func (c *Cache) Add(key uint64, val []byte) {
	c.addMem(key, val)
	if c.db == nil {
		return
	}
	if err := c.db.Set(dbKey(key), val, pebble.NoSync); err != nil {
		slog.Warn("blobcacheWriteError", "key", key, "err", err)
	}
}

func (c *Cache) addMem(key uint64, val []byte) {
	if len(val) > c.maxBlob {
		return
	}
	c.mu.Lock()
	c.mem.Add(key, val)
	c.mu.Unlock()
}

// Close flushes the disk tier, if any.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	if err := c.db.Flush(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
