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

// Package world 是承載 seed / entropy 的物件容器。
//
// 世界只做三件事：
//  1. 以世代 ID 管理物件存活。
//  2. 每個物件依演算法各保存一份 Seed 與 Entropy。
//  3. 透過延遲指令佇列與生命週期 hook，讓「寫入 seed」自動在下一次 Flush 時建立對應的 Entropy。
//
// World 不是併發安全的；平行工作請使用獨立 Buffer 再依序併入。
package world

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/rng"
)

const defaultFlushLimit = 1 << 20

// EntropyHook 在某物件的 Entropy 被（重新）建立後呼叫。只能透過 cmds 排入指令。
type EntropyHook func(w *World, id ID, cmds *Commands)

// DespawnHook 在物件被移除前呼叫，此時物件資料仍可讀取。
type DespawnHook func(w *World, id ID, cmds *Commands)

type entry struct {
	gen      uint32
	alive    bool
	reserved bool
	name     string
}

type seedSlot struct {
	seed    rng.Seed
	version uint64
}

type World struct {
	entries []entry
	free    []uint32

	seeds     map[core.Kind]map[ID]*seedSlot
	entropies map[core.Kind]map[ID]*rng.Entropy

	entropyHooks map[core.Kind][]EntropyHook
	despawnHooks []DespawnHook

	queue      Buffer
	flushing   bool
	flushLimit int
	applied    uint64

	log *slog.Logger
}

type Option func(*World)

func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithFlushLimit 單次 Flush 最多套用的指令數。
func WithFlushLimit(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.flushLimit = n
		}
	}
}

func New(opts ...Option) *World {
	w := &World{
		seeds:        make(map[core.Kind]map[ID]*seedSlot, 4),
		entropies:    make(map[core.Kind]map[ID]*rng.Entropy, 4),
		entropyHooks: make(map[core.Kind][]EntropyHook, 4),
		flushLimit:   defaultFlushLimit,
		log:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// -----------------------------------------
// 物件
// -----------------------------------------

func (w *World) reserve(name string) ID {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.entries))
		w.entries = append(w.entries, entry{})
	}
	e := &w.entries[idx]
	if e.gen == 0 {
		e.gen = 1
	}
	e.reserved = true
	e.alive = false
	e.name = name
	return ID{Index: idx, Gen: e.gen}
}

func (w *World) activate(id ID) {
	if e := w.entry(id); e != nil && e.reserved {
		e.reserved = false
		e.alive = true
	}
}

func (w *World) entry(id ID) *entry {
	if id.IsNil() || int(id.Index) >= len(w.entries) {
		return nil
	}
	e := &w.entries[id.Index]
	if e.gen != id.Gen {
		return nil
	}
	return e
}

// Spawn 立即建立存活物件。
func (w *World) Spawn(name string) ID {
	id := w.reserve(name)
	w.activate(id)
	return id
}

func (w *World) Alive(id ID) bool {
	e := w.entry(id)
	return e != nil && e.alive
}

func (w *World) Name(id ID) string {
	if e := w.entry(id); e != nil {
		return e.name
	}
	return ""
}

// Len 存活物件數量
func (w *World) Len() int {
	n := 0
	for i := range w.entries {
		if w.entries[i].alive {
			n++
		}
	}
	return n
}

// Objects 依 ID 順序列出存活物件。
func (w *World) Objects() []ID {
	out := make([]ID, 0, len(w.entries))
	for i := range w.entries {
		if w.entries[i].alive {
			out = append(out, ID{Index: uint32(i), Gen: w.entries[i].gen})
		}
	}
	return out
}

// Despawn 立即移除物件：先呼叫 despawn hook，再清除 seed / entropy。
// 已不存在的物件回傳 false。
func (w *World) Despawn(id ID) bool {
	e := w.entry(id)
	if e == nil {
		return false
	}
	if e.reserved {
		w.release(id)
		return true
	}
	if !e.alive {
		return false
	}
	cmds := w.Commands()
	for _, h := range w.despawnHooks {
		h(w, id, cmds)
	}
	for _, m := range w.seeds {
		delete(m, id)
	}
	for _, m := range w.entropies {
		delete(m, id)
	}
	w.release(id)
	return true
}

func (w *World) release(id ID) {
	e := &w.entries[id.Index]
	e.alive = false
	e.reserved = false
	e.name = ""
	// 世代加一，舊 ID 立即失效
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	w.free = append(w.free, id.Index)
}

// -----------------------------------------
// Seed / Entropy
// -----------------------------------------

// InsertSeed 寫入 seed 並排入「由此 seed 建立 Entropy」的指令。
//
// 重複寫入（即使內容相同）會讓 Entropy 重新從位置 0 開始，並遞增 seed 版本。
func (w *World) InsertSeed(id ID, s rng.Seed) error {
	if !w.Alive(id) {
		return errs.Detail(errs.ErrNoObject, "%s", id)
	}
	if s.IsZero() {
		return errs.Detail(errs.ErrUnknownKind, "zero seed")
	}
	k := s.Kind()
	m := w.seeds[k]
	if m == nil {
		m = make(map[ID]*seedSlot)
		w.seeds[k] = m
	}
	slot := m[id]
	if slot == nil {
		slot = &seedSlot{}
		m[id] = slot
	}
	slot.seed = s
	slot.version++

	w.queue.Push(func(w *World) error {
		if !w.Alive(id) {
			w.dropped("derive entropy", id)
			return nil
		}
		e, err := s.Entropy()
		if err != nil {
			return err
		}
		return w.InsertEntropy(id, e)
	})
	return nil
}

// RemoveSeed 移除 seed，並排入移除對應 Entropy 的指令。
func (w *World) RemoveSeed(id ID, k core.Kind) bool {
	m := w.seeds[k]
	if m == nil || m[id] == nil {
		return false
	}
	delete(m, id)
	w.queue.Push(func(w *World) error {
		w.RemoveEntropy(id, k)
		return nil
	})
	return true
}

func (w *World) Seed(id ID, k core.Kind) (rng.Seed, bool) {
	if slot := w.seeds[k][id]; slot != nil {
		return slot.seed, true
	}
	return rng.Seed{}, false
}

// SeedVersion seed 被寫入的次數，從未寫入為 0。
func (w *World) SeedVersion(id ID, k core.Kind) uint64 {
	if slot := w.seeds[k][id]; slot != nil {
		return slot.version
	}
	return 0
}

// InsertEntropy 立即寫入 Entropy 並呼叫該演算法的 hook。
func (w *World) InsertEntropy(id ID, e *rng.Entropy) error {
	if err := w.PutEntropy(id, e); err != nil {
		return err
	}
	if hooks := w.entropyHooks[e.Kind()]; len(hooks) > 0 {
		cmds := w.Commands()
		for _, h := range hooks {
			h(w, id, cmds)
		}
	}
	return nil
}

// PutEntropy 寫入 Entropy 但不呼叫 hook，用於從快照還原。
func (w *World) PutEntropy(id ID, e *rng.Entropy) error {
	if !w.Alive(id) {
		return errs.Detail(errs.ErrNoObject, "%s", id)
	}
	m := w.entropies[e.Kind()]
	if m == nil {
		m = make(map[ID]*rng.Entropy)
		w.entropies[e.Kind()] = m
	}
	m[id] = e
	return nil
}

func (w *World) RemoveEntropy(id ID, k core.Kind) bool {
	m := w.entropies[k]
	if m == nil || m[id] == nil {
		return false
	}
	delete(m, id)
	return true
}

// Entropy 取得物件的 Entropy。回傳的指標由世界持有，呼叫端不可保留到下一次 Flush 之後。
func (w *World) Entropy(id ID, k core.Kind) (*rng.Entropy, bool) {
	e, ok := w.entropies[k][id]
	return e, ok
}

// WithEntropy 持有 k 的存活物件，依 ID 排序。
func (w *World) WithEntropy(k core.Kind) []ID {
	m := w.entropies[k]
	out := make([]ID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	slices.SortFunc(out, Compare)
	return out
}

// Kinds 物件上出現過 seed 或 entropy 的演算法，依名稱排序。
func (w *World) Kinds(id ID) []core.Kind {
	seen := make(map[core.Kind]struct{}, 4)
	for k, m := range w.seeds {
		if m[id] != nil {
			seen[k] = struct{}{}
		}
	}
	for k, m := range w.entropies {
		if m[id] != nil {
			seen[k] = struct{}{}
		}
	}
	out := make([]core.Kind, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b core.Kind) int { return cmp.Compare(a.Name(), b.Name()) })
	return out
}

// -----------------------------------------
// Hooks 與指令佇列
// -----------------------------------------

func (w *World) OnEntropyInsert(k core.Kind, h EntropyHook) {
	w.entropyHooks[k] = append(w.entropyHooks[k], h)
}

func (w *World) OnDespawn(h DespawnHook) {
	w.despawnHooks = append(w.despawnHooks, h)
}

// Commands 回傳綁定世界佇列的指令介面。
func (w *World) Commands() *Commands {
	return &Commands{Buffer: &w.queue, w: w}
}

// Append 將獨立緩衝的指令依序接到世界佇列尾端，並清空 b。
func (w *World) Append(b *Buffer) {
	w.queue.cmds = append(w.queue.cmds, b.cmds...)
	b.Reset()
}

// Pending 佇列中尚未套用的指令數。
func (w *World) Pending() int { return len(w.queue.cmds) }

// Applied 累計已套用的指令數。
func (w *World) Applied() uint64 { return w.applied }

// Flush 依加入順序套用所有指令，包含套用過程中新排入的指令，直到佇列清空。
//
// 單一指令失敗不會中斷其他指令，所有錯誤合併後回傳。
// 超過 flush 上限時丟棄剩餘指令並回傳 errs.ErrFlushLimit。
// 在指令內再次呼叫 Flush 不會做任何事。
func (w *World) Flush() error {
	if w.flushing {
		return nil
	}
	w.flushing = true
	defer func() { w.flushing = false }()

	var errList []error
	n := 0
	for i := 0; i < len(w.queue.cmds); i++ {
		cmd := w.queue.cmds[i]
		w.queue.cmds[i] = nil
		if n >= w.flushLimit {
			w.queue.Reset()
			errList = append(errList, errs.Detail(errs.ErrFlushLimit, "limit %d", w.flushLimit))
			w.log.Error("flush aborted", slog.Int("limit", w.flushLimit))
			return errors.Join(errList...)
		}
		n++
		w.applied++
		if err := cmd(w); err != nil {
			w.log.Warn("command failed", slog.String("err", err.Error()))
			errList = append(errList, err)
		}
	}
	w.queue.Reset()
	return errors.Join(errList...)
}

func (w *World) dropped(op string, id ID) {
	w.log.Debug("command dropped", slog.String("op", op), slog.String("id", id.String()))
}
