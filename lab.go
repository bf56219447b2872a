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

// Package seedlab 為模擬中的大量物件提供可重現、彼此獨立的亂數串流。
//
// 一個 Lab 由三部分組成：
//   - world：物件與其 seed / entropy。
//   - graph：source → target 的派生關係。
//   - relations：哪些 (source 演算法, target 演算法) 啟用了訊號與自動連鎖。
//
// 所有變更都經由延遲指令佇列，在 Flush 時依加入順序套用。
// 相同根 seed、相同操作順序，得到位元相同的結果，與 worker 數量無關。
package seedlab

import (
	"log/slog"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/entropy"
	"github.com/zintix-labs/seedlab/sdk/link"
	"github.com/zintix-labs/seedlab/sdk/rng"
	"github.com/zintix-labs/seedlab/sdk/world"
)

// Lab 不是併發安全的。平行處理請使用 Step。
type Lab struct {
	w         *world.World
	g         *link.Graph
	reg       *core.Registry
	cache     *entropy.Cache
	globals   map[core.Kind][]world.ID
	relations map[link.Pair]*relation
	log       *slog.Logger

	flushLimit int
}

type relation struct {
	cascadeDespawn bool
}

type Option func(*Lab)

func WithLogger(l *slog.Logger) Option {
	return func(lab *Lab) {
		if l != nil {
			lab.log = l
		}
	}
}

// WithRegistry 指定演算法名稱表（快照還原與設定檔解析用）。
func WithRegistry(r *core.Registry) Option {
	return func(lab *Lab) {
		if r != nil {
			lab.reg = r
		}
	}
}

// WithCache 指定快速 entropy 快取，預設使用 entropy.Shared()。
func WithCache(c *entropy.Cache) Option {
	return func(lab *Lab) {
		if c != nil {
			lab.cache = c
		}
	}
}

// WithFlushLimit 單次 Flush 最多套用的指令數。
func WithFlushLimit(n int) Option {
	return func(lab *Lab) { lab.flushLimit = n }
}

func New(opts ...Option) *Lab {
	l := &Lab{
		g:         link.NewGraph(),
		reg:       core.Default(),
		globals:   make(map[core.Kind][]world.ID, 2),
		relations: make(map[link.Pair]*relation, 4),
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = entropy.Shared()
	}
	l.w = world.New(world.WithLogger(l.log), world.WithFlushLimit(l.flushLimit))
	l.w.OnDespawn(l.onDespawn)
	return l
}

func (l *Lab) World() *world.World      { return l.w }
func (l *Lab) Graph() *link.Graph       { return l.g }
func (l *Lab) Registry() *core.Registry { return l.reg }
func (l *Lab) Logger() *slog.Logger     { return l.log }

// Flush 套用所有排入的指令與訊號。
func (l *Lab) Flush() error {
	return l.w.Flush()
}

// -----------------------------------------
// 全域來源
// -----------------------------------------

// AddGlobal 建立演算法 k 的全域來源並立即 Flush。seed 為 nil 時由快速 entropy 快取產生。
//
// 同一演算法只應有一個全域來源；重複建立時記錄警告，之後一律使用最早建立且仍存活的那個。
func (l *Lab) AddGlobal(k core.Kind, seed []byte) (world.ID, error) {
	var (
		s   rng.Seed
		err error
	)
	if seed == nil {
		s, err = rng.SeedFromCache(l.cache, k)
	} else {
		s, err = rng.NewSeed(k, seed)
	}
	if err != nil {
		return world.Nil, errs.Wrap(err, "add global source")
	}
	if len(l.aliveGlobals(k)) > 0 {
		l.log.Warn("multiple global sources", slog.String("kind", k.Name()))
	}
	id := l.w.Spawn("global:" + k.Name())
	if err := l.w.InsertSeed(id, s); err != nil {
		return world.Nil, err
	}
	l.globals[k] = append(l.globals[k], id)
	return id, l.Flush()
}

// Global 演算法 k 目前使用的全域來源。
func (l *Lab) Global(k core.Kind) (world.ID, bool) {
	alive := l.aliveGlobals(k)
	if len(alive) == 0 {
		return world.Nil, false
	}
	if len(alive) > 1 {
		l.log.Debug("multiple global sources, using first", slog.String("kind", k.Name()), slog.String("id", alive[0].String()))
	}
	return alive[0], true
}

func (l *Lab) aliveGlobals(k core.Kind) []world.ID {
	ids := l.globals[k][:0:0]
	for _, id := range l.globals[k] {
		if l.w.Alive(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// -----------------------------------------
// 關係
// -----------------------------------------

type RelateOption func(*relation)

// WithCascadeDespawn source 被移除時一併移除其 targets。
func WithCascadeDespawn() RelateOption {
	return func(r *relation) { r.cascadeDespawn = true }
}

// Relate 啟用 p 的訊號與自動連鎖：
// 任何物件的 p.Source entropy 被（重新）建立時，若它在 p 下有 targets，就重新發送 SeedLinked。
// 重複呼叫只更新選項。
func (l *Lab) Relate(p link.Pair, opts ...RelateOption) {
	if r, ok := l.relations[p]; ok {
		for _, opt := range opts {
			opt(r)
		}
		return
	}
	r := &relation{}
	for _, opt := range opts {
		opt(r)
	}
	l.relations[p] = r
	l.w.OnEntropyInsert(p.Source, func(w *world.World, id world.ID, cmds *world.Commands) {
		if l.g.IsSource(p, id) {
			l.sendTo(cmds.Buffer, SeedLinked{Source: id, Pair: p})
		}
	})
}

// Related p 是否已啟用。
func (l *Lab) Related(p link.Pair) bool {
	_, ok := l.relations[p]
	return ok
}

// -----------------------------------------
// 物件
// -----------------------------------------

// Spawn 立即建立物件，可選擇同時寫入 seed（entropy 於下次 Flush 建立）。
func (l *Lab) Spawn(name string, seeds ...rng.Seed) (world.ID, error) {
	id := l.w.Spawn(name)
	for _, s := range seeds {
		if err := l.w.InsertSeed(id, s); err != nil {
			return id, err
		}
	}
	return id, nil
}

// InsertSeed 排入寫入 seed 的指令。
func (l *Lab) InsertSeed(id world.ID, s rng.Seed) {
	l.w.Commands().InsertSeed(id, s)
}

// Despawn 排入移除物件的指令。物件的邊會被清除；
// 啟用 WithCascadeDespawn 的關係下，它的 targets 也會被移除。
func (l *Lab) Despawn(id world.ID) {
	l.w.Commands().Despawn(id)
}

func (l *Lab) Entropy(id world.ID, k core.Kind) (*rng.Entropy, bool) {
	return l.w.Entropy(id, k)
}

func (l *Lab) Seed(id world.ID, k core.Kind) (rng.Seed, bool) {
	return l.w.Seed(id, k)
}

func (l *Lab) onDespawn(w *world.World, id world.ID, cmds *world.Commands) {
	orphans := l.g.RemoveObject(id)
	if len(orphans) == 0 {
		return
	}
	// map 走訪順序不固定，先依 Pair 名稱排序
	for _, p := range sortedPairs(orphans) {
		r := l.relations[p]
		if r == nil || !r.cascadeDespawn {
			continue
		}
		for _, t := range orphans[p] {
			cmds.Despawn(t)
		}
	}
}
