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

package world

import (
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/rng"
)

// Command 延遲到 flush 才套用的操作。
type Command func(w *World) error

// Buffer 指令緩衝，依加入順序套用。
//
// 可以獨立建立（NewBuffer）交給 worker 使用，之後再以 World.Append 依呼叫端
// 決定的順序併入世界佇列。獨立緩衝不能 Spawn，因為 ID 配置必須在單一順序下進行。
type Buffer struct {
	cmds []Command
}

func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) Push(c Command) { b.cmds = append(b.cmds, c) }

func (b *Buffer) Len() int { return len(b.cmds) }

func (b *Buffer) Reset() { clear(b.cmds); b.cmds = b.cmds[:0] }

// InsertSeed 寫入 seed。套用時物件已不存在則略過。
func (b *Buffer) InsertSeed(id ID, s rng.Seed) {
	b.Push(func(w *World) error {
		if !w.Alive(id) {
			w.dropped("insert seed", id)
			return nil
		}
		return w.InsertSeed(id, s)
	})
}

// InsertSeedBatch 一次寫入多筆 seed，ids 與 seeds 一一對應。
// 整批在同一個指令內依序寫入，中間不會插入其他指令。
func (b *Buffer) InsertSeedBatch(ids []ID, seeds []rng.Seed) {
	b.Push(func(w *World) error {
		for i, id := range ids {
			if !w.Alive(id) {
				w.dropped("insert seed batch", id)
				continue
			}
			if err := w.InsertSeed(id, seeds[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Buffer) RemoveSeed(id ID, k core.Kind) {
	b.Push(func(w *World) error {
		w.RemoveSeed(id, k)
		return nil
	})
}

func (b *Buffer) InsertEntropy(id ID, e *rng.Entropy) {
	b.Push(func(w *World) error {
		if !w.Alive(id) {
			w.dropped("insert entropy", id)
			return nil
		}
		return w.InsertEntropy(id, e)
	})
}

func (b *Buffer) Despawn(id ID) {
	b.Push(func(w *World) error {
		w.Despawn(id)
		return nil
	})
}

// Commands 綁定世界佇列的指令介面，額外支援 Spawn。
type Commands struct {
	*Buffer
	w *World
}

// Spawn 立即保留一個 ID，物件在 flush 時才成為存活狀態。
func (c *Commands) Spawn(name string) ID {
	id := c.w.reserve(name)
	c.Push(func(w *World) error {
		w.activate(id)
		return nil
	})
	return id
}
