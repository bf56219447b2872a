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

// Package link 記錄物件之間的 source → target 關係。
//
// 關係以 Pair（source 演算法, target 演算法）分組：同一個 Pair 下，
// 一個 target 最多只有一個 source，一個 source 可以有多個 target，
// 而且 target 保持連結時的順序。
package link

import (
	"cmp"
	"slices"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/world"
)

// Pair 關係種類：Source 演算法派生 Target 演算法的 seed。
type Pair struct {
	Source core.Kind
	Target core.Kind
}

func (p Pair) String() string {
	return p.Source.Name() + "->" + p.Target.Name()
}

type edges struct {
	source  map[world.ID]world.ID
	targets map[world.ID][]world.ID
}

// Graph 不是併發安全的，與 World 一樣由單一擁有者修改。
type Graph struct {
	pairs map[Pair]*edges
}

func NewGraph() *Graph {
	return &Graph{pairs: make(map[Pair]*edges, 4)}
}

func (g *Graph) edgesOf(p Pair, create bool) *edges {
	e := g.pairs[p]
	if e == nil && create {
		e = &edges{
			source:  make(map[world.ID]world.ID),
			targets: make(map[world.ID][]world.ID),
		}
		g.pairs[p] = e
	}
	return e
}

// Link 將 targets 連到 source。
//
// 先檢查全部 target，任何一個不合法就整批不寫入。
// 已連到其他 source 的 target 會被移過來；已連到同一 source 的維持原本順序。
func (g *Graph) Link(p Pair, source world.ID, targets ...world.ID) error {
	e := g.edgesOf(p, false)
	for _, t := range targets {
		if t == source {
			return errs.Detail(errs.ErrSelfLink, "%s on %s", source, p)
		}
		if e != nil && e.reaches(source, t) {
			return errs.Detail(errs.ErrCycle, "%s -> %s on %s", source, t, p)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	e = g.edgesOf(p, true)
	for _, t := range targets {
		if old, ok := e.source[t]; ok {
			if old == source {
				continue
			}
			e.detach(old, t)
		}
		e.source[t] = source
		e.targets[source] = append(e.targets[source], t)
	}
	return nil
}

// reaches 從 from 沿 source 方向往上走，是否會遇到 to。
func (e *edges) reaches(from, to world.ID) bool {
	cur := from
	for steps := 0; steps <= len(e.source); steps++ {
		if cur == to {
			return true
		}
		next, ok := e.source[cur]
		if !ok {
			return false
		}
		cur = next
	}
	return true
}

func (e *edges) detach(source, target world.ID) {
	list := e.targets[source]
	if i := slices.Index(list, target); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	if len(list) == 0 {
		delete(e.targets, source)
	} else {
		e.targets[source] = list
	}
}

// Unlink 移除 target 在 p 下的 source。
func (g *Graph) Unlink(p Pair, target world.ID) bool {
	e := g.edgesOf(p, false)
	if e == nil {
		return false
	}
	src, ok := e.source[target]
	if !ok {
		return false
	}
	delete(e.source, target)
	e.detach(src, target)
	return true
}

// RemoveObject 移除 id 在所有 Pair 下的邊（雙向），回傳它原本作為 source 時的 targets。
func (g *Graph) RemoveObject(id world.ID) map[Pair][]world.ID {
	var orphans map[Pair][]world.ID
	for p, e := range g.pairs {
		if src, ok := e.source[id]; ok {
			delete(e.source, id)
			e.detach(src, id)
		}
		if ts, ok := e.targets[id]; ok {
			for _, t := range ts {
				delete(e.source, t)
			}
			delete(e.targets, id)
			if orphans == nil {
				orphans = make(map[Pair][]world.ID)
			}
			orphans[p] = ts
		}
	}
	return orphans
}

func (g *Graph) SourceOf(p Pair, target world.ID) (world.ID, bool) {
	e := g.edgesOf(p, false)
	if e == nil {
		return world.Nil, false
	}
	src, ok := e.source[target]
	return src, ok
}

// TargetsOf 依連結順序回傳 targets 的副本。
func (g *Graph) TargetsOf(p Pair, source world.ID) []world.ID {
	e := g.edgesOf(p, false)
	if e == nil {
		return nil
	}
	return slices.Clone(e.targets[source])
}

// IsSource 是否至少有一個 target。
func (g *Graph) IsSource(p Pair, id world.ID) bool {
	e := g.edgesOf(p, false)
	return e != nil && len(e.targets[id]) > 0
}

// Pairs 有邊的 Pair，依名稱排序。
func (g *Graph) Pairs() []Pair {
	out := make([]Pair, 0, len(g.pairs))
	for p, e := range g.pairs {
		if len(e.source) > 0 {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b Pair) int { return cmp.Compare(a.String(), b.String()) })
	return out
}

// Len p 下的邊數。
func (g *Graph) Len(p Pair) int {
	e := g.edgesOf(p, false)
	if e == nil {
		return 0
	}
	return len(e.source)
}

// Edge 一條邊，Order 為它在 source target 列表中的位置。
type Edge struct {
	Source world.ID
	Target world.ID
	Order  int
}

// Edges p 下所有邊，依 source ID 與連結順序排序。
func (g *Graph) Edges(p Pair) []Edge {
	e := g.edgesOf(p, false)
	if e == nil {
		return nil
	}
	sources := make([]world.ID, 0, len(e.targets))
	for s := range e.targets {
		sources = append(sources, s)
	}
	slices.SortFunc(sources, world.Compare)
	out := make([]Edge, 0, len(e.source))
	for _, s := range sources {
		for i, t := range e.targets[s] {
			out = append(out, Edge{Source: s, Target: t, Order: i})
		}
	}
	return out
}

// Validate 確認兩個方向的半邊一致。
func (g *Graph) Validate() error {
	for p, e := range g.pairs {
		n := 0
		for s, ts := range e.targets {
			for _, t := range ts {
				if e.source[t] != s {
					return errs.Fatalf("dangling edge %s -> %s on %s", s, t, p)
				}
				n++
			}
		}
		if n != len(e.source) {
			return errs.Fatalf("edge count mismatch on %s: %d targets, %d sources", p, n, len(e.source))
		}
	}
	return nil
}
