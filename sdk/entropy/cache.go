// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package entropy

import (
	"crypto/rand"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
)

// Cache 每個槽位持有一個延遲建立的 ChaCha8。
//
// 槽位數量等於建立時的 GOMAXPROCS。goroutine 會在 OS thread 之間遷移，
// 所以這裡以「可同時執行的數量」切分，而不是綁定 thread。
// 槽位一旦建立就不會被拆除。
type Cache struct {
	slots  []slot
	next   atomic.Uint32
	reader io.Reader

	overflow atomic.Uint64
}

type slot struct {
	busy atomic.Bool
	rng  *core.ChaCha8
}

type Option func(*Cache)

// WithSlots 指定槽位數量（最少 1）。
func WithSlots(n int) Option {
	return func(c *Cache) {
		if n < 1 {
			n = 1
		}
		c.slots = make([]slot, n)
	}
}

// WithReader 替換 OS entropy 來源，僅供測試。
func WithReader(r io.Reader) Option {
	return func(c *Cache) { c.reader = r }
}

func NewCache(opts ...Option) *Cache {
	c := &Cache{reader: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	if c.slots == nil {
		c.slots = make([]slot, runtime.GOMAXPROCS(0))
	}
	return c
}

var shared = sync.OnceValue(func() *Cache { return NewCache() })

// Shared 程序共用的 Cache。
func Shared() *Cache { return shared() }

// Slots 槽位數量
func (c *Cache) Slots() int { return len(c.slots) }

// Overflows 槽位全滿時臨時建立的實例數量。
func (c *Cache) Overflows() uint64 { return c.overflow.Load() }

// Checkout 借出一個空閒槽位。
//
// 槽位全被借出時（例如在 With 的回呼內再次 Checkout），回傳一個臨時的
// OS-seeded 實例，不會讓兩個租借共用同一個槽位。
// 第一次使用某槽位時需要 OS entropy，失敗回傳 errs.ErrEntropy。
func (c *Cache) Checkout() (*Lease, error) {
	n := uint32(len(c.slots))
	start := c.next.Add(1)
	for i := uint32(0); i < n; i++ {
		s := &c.slots[(start+i)%n]
		if !s.busy.CompareAndSwap(false, true) {
			continue
		}
		if s.rng == nil {
			rng, err := c.seeded()
			if err != nil {
				s.busy.Store(false)
				return nil, err
			}
			s.rng = rng
		}
		return &Lease{rng: s.rng, slot: s}, nil
	}

	rng, err := c.seeded()
	if err != nil {
		return nil, err
	}
	c.overflow.Add(1)
	return &Lease{rng: rng}, nil
}

// MustCheckout 同 Checkout，失敗直接 panic。
func (c *Cache) MustCheckout() *Lease {
	l, err := c.Checkout()
	if err != nil {
		panic(err)
	}
	return l
}

// With 借出後執行 fn，結束時自動歸還。
func (c *Cache) With(fn func(src core.Source)) error {
	l, err := c.Checkout()
	if err != nil {
		return err
	}
	defer l.Release()
	fn(l)
	return nil
}

// Fill 以快取 entropy 填滿 p。
func (c *Cache) Fill(p []byte) error {
	return c.With(func(src core.Source) { src.FillBytes(p) })
}

func (c *Cache) seeded() (*core.ChaCha8, error) {
	var seed [32]byte
	if err := fillFrom(c.reader, seed[:]); err != nil {
		return nil, err
	}
	return core.NewChaCha8(seed), nil
}

// Lease 借出的 entropy。歸還後任何使用都會 panic。
type Lease struct {
	rng      *core.ChaCha8
	slot     *slot
	released bool
}

func (l *Lease) live() *core.ChaCha8 {
	if l.released {
		panic(errs.ErrReleased)
	}
	return l.rng
}

func (l *Lease) Uint32() uint32     { return l.live().Uint32() }
func (l *Lease) Uint64() uint64     { return l.live().Uint64() }
func (l *Lease) FillBytes(p []byte) { l.live().FillBytes(p) }

// Release 歸還槽位。重複呼叫不做任何事。
func (l *Lease) Release() {
	if l.released {
		return
	}
	l.released = true
	l.rng = nil
	if l.slot != nil {
		l.slot.busy.Store(false)
		l.slot = nil
	}
}
