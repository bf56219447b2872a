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

package seedlab

import (
	"errors"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/link"
	"github.com/zintix-labs/seedlab/sdk/rng"
	"github.com/zintix-labs/seedlab/sdk/world"
)

// RngCommands 以某物件為主體，在 Pair 下排入連結與重新派生的指令。
type RngCommands struct {
	l     *Lab
	buf   *world.Buffer
	spawn *world.Commands
	id    world.ID
	pair  link.Pair
}

// RNG 回傳 id 在 p 下的指令介面，指令排入世界佇列。
func (l *Lab) RNG(id world.ID, p link.Pair) *RngCommands {
	cmds := l.w.Commands()
	return &RngCommands{l: l, buf: cmds.Buffer, spawn: cmds, id: id, pair: p}
}

func (c *RngCommands) ID() world.ID { return c.id }

// LinkTargets 將 targets 連到本物件，整批成功或整批失敗（錯誤在 Flush 回傳）。
func (c *RngCommands) LinkTargets(targets ...world.ID) *RngCommands {
	ts := append([]world.ID(nil), targets...)
	src := c.id
	c.buf.Push(func(w *world.World) error {
		if !w.Alive(src) {
			c.l.log.Debug("link dropped, source gone")
			return nil
		}
		for _, t := range ts {
			if !w.Alive(t) {
				return errs.Detail(errs.ErrNoObject, "link target %s", t)
			}
		}
		return c.l.g.Link(c.pair, src, ts...)
	})
	return c
}

// UnlinkFromSource 解除本物件在 Pair 下的 source。
func (c *RngCommands) UnlinkFromSource() *RngCommands {
	id := c.id
	c.buf.Push(func(w *world.World) error {
		c.l.g.Unlink(c.pair, id)
		return nil
	})
	return c
}

// SpawnTargets 建立 len(names) 個新物件並連到本物件，同一個指令內由本物件派生它們的 seed。
// 本物件沒有 entropy 時只建立與連結，不寫 seed。
//
// 只能用於綁定世界佇列的 RngCommands；在 Step 內呼叫會 panic，
// 因為 ID 的配置必須照單一順序進行。
func (c *RngCommands) SpawnTargets(names ...string) []world.ID {
	if c.spawn == nil {
		panic(errs.NewFatal("SpawnTargets is not available inside Step"))
	}
	ids := make([]world.ID, len(names))
	for i, n := range names {
		ids[i] = c.spawn.Spawn(n)
	}
	src := c.id
	p := c.pair
	c.buf.Push(func(w *world.World) error {
		if !w.Alive(src) {
			c.l.log.Debug("spawn targets without source", "source", src.String())
			return nil
		}
		// flush 前被 despawn 的物件不連結也不派生 seed
		alive := make([]world.ID, 0, len(ids))
		for _, id := range ids {
			if w.Alive(id) {
				alive = append(alive, id)
				continue
			}
			c.l.log.Debug("spawn target despawned before flush", "target", id.String())
		}
		if len(alive) == 0 {
			return nil
		}
		if err := c.l.g.Link(p, src, alive...); err != nil {
			return err
		}
		e, ok := w.Entropy(src, p.Source)
		if !ok {
			return nil
		}
		seeds := rng.ForkSeeds(e, p.Target, len(alive))
		var errList []error
		for i, id := range alive {
			if err := w.InsertSeed(id, seeds[i]); err != nil {
				errList = append(errList, err)
			}
		}
		return errors.Join(errList...)
	})
	return ids
}

// ReseedLinked 送出 SeedLinked。
func (c *RngCommands) ReseedLinked() *RngCommands {
	c.l.sendTo(c.buf, SeedLinked{Source: c.id, Pair: c.pair})
	return c
}

// ReseedFromSource 送出 SeedFromSource。
func (c *RngCommands) ReseedFromSource() *RngCommands {
	c.l.sendTo(c.buf, SeedFromSource{Target: c.id, Pair: c.pair})
	return c
}

// ReseedFromGlobal 送出 SeedFromGlobal。
func (c *RngCommands) ReseedFromGlobal() *RngCommands {
	c.l.sendTo(c.buf, SeedFromGlobal{Target: c.id, Pair: c.pair})
	return c
}
