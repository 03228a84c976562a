// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package blobcache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/elliotnunn/alfuel/internal/al"
)

var _ al.Cache = (*Cache)(nil)

func TestMemory(t *testing.T) {
	c := New(1 << 20)
	if _, ok := c.Get(1); ok {
		t.Error("empty cache had a hit")
	}
	c.Add(1, []byte("one"))
	if got, ok := c.Get(1); !ok || string(got) != "one" {
		t.Errorf("got %q, %v", got, ok)
	}

	c.Add(2, make([]byte, 1<<20)) // too big for the memory tier
	if _, ok := c.Get(2); ok {
		t.Error("oversized payload was kept in memory")
	}
	if err := c.Close(); err != nil {
		t.Error(err)
	}
}

func TestDisk(t *testing.T) {
	dir := t.TempDir()
	big := bytes.Repeat([]byte("x"), 1<<20)

	c, err := Open(1<<20, dir)
	if err != nil {
		t.Fatal(err)
	}
	c.Add(7, []byte("seven"))
	c.Add(8, big)
	if got, ok := c.Get(8); !ok || !bytes.Equal(got, big) {
		t.Error("oversized payload missing from disk tier")
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c, err = Open(1<<20, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if got, ok := c.Get(7); !ok || string(got) != "seven" {
		t.Errorf("after reopening got %q, %v", got, ok)
	}
	if _, ok := c.Get(9); ok {
		t.Error("hit on a key never added")
	}
}

func TestConcurrent(t *testing.T) {
	c := New(1 << 20)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				k := uint64(g*1000 + i)
				want := fmt.Sprint(k)
				c.Add(k, []byte(want))
				if got, ok := c.Get(k); ok && string(got) != want {
					t.Errorf("key %d holds %q", k, got)
				}
			}
		}()
	}
	wg.Wait()
}
