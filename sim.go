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
	"io"
	"strconv"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/link"
	"github.com/zintix-labs/seedlab/sdk/rng"
	"github.com/zintix-labs/seedlab/sdk/sampler"
	"github.com/zintix-labs/seedlab/sdk/world"
	"github.com/zintix-labs/seedlab/spec"
	"github.com/zintix-labs/seedlab/stats"
)

// Simulator 依情境建立 Lab，逐步抽取亂數並統計各群組的串流品質。
type Simulator struct {
	sc          *spec.Scenario
	lab         *Lab
	root        rng.Seed
	global      world.ID
	globalKind  core.Kind
	globalPairs []link.Pair // 以全域來源為 source 的 Pair，依出現順序
	kinds       []core.Kind // 需要逐步抽取的演算法，依出現順序
	groups      []*simGroup // 依設定順序
	accs        map[world.ID]*stats.Accumulator
	tables      map[world.ID]*sampler.AliasTable // 只讀，Step 期間可並行查詢
	reseeds     int
	steps       int
}

type simGroup struct {
	cfg     spec.Group
	kind    core.Kind
	pair    link.Pair
	table   *sampler.AliasTable
	members []world.ID
}

// NewSimulator 建立情境中的全域來源、群組與連結，並完成第一次 seed 派生。
func NewSimulator(sc *spec.Scenario, opts ...Option) (*Simulator, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	lab := New(opts...)
	reg := lab.Registry()

	gk, err := reg.Lookup(sc.Global.Kind)
	if err != nil {
		return nil, errs.Wrap(err, "global kind")
	}
	root, err := rootSeed(reg, gk, sc.Global)
	if err != nil {
		return nil, err
	}
	gid, err := lab.AddGlobal(gk, root.Bytes())
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		sc:         sc,
		lab:        lab,
		root:       root,
		global:     gid,
		globalKind: gk,
		accs:       make(map[world.ID]*stats.Accumulator, 64),
		tables:     make(map[world.ID]*sampler.AliasTable),
	}
	var relOpts []RelateOption
	if sc.CascadeDespawn {
		relOpts = append(relOpts, WithCascadeDespawn())
	}

	byName := make(map[string]*simGroup, len(sc.Groups))
	for _, gc := range sc.Groups {
		k, err := reg.Lookup(gc.Kind)
		if err != nil {
			return nil, errs.Wrap(err, "group "+gc.Name)
		}
		sources := []world.ID{gid}
		srcKind := gk
		if gc.SourceName() != spec.GlobalSource {
			src, ok := byName[gc.Source]
			if !ok {
				return nil, errs.Detail(errs.ErrBadConfig, "group %q source %q must be defined before it", gc.Name, gc.Source)
			}
			sources = src.members
			srcKind = src.kind
		}
		g := &simGroup{cfg: gc, kind: k, pair: link.Pair{Source: srcKind, Target: k}}
		if len(gc.Weights) > 0 {
			if g.table, err = sampler.NewAliasTable(gc.Weights); err != nil {
				return nil, errs.Wrap(err, "group "+gc.Name)
			}
		}
		lab.Relate(g.pair, relOpts...)

		buckets := make([][]world.ID, len(sources))
		for i := 0; i < gc.Count; i++ {
			id, _ := lab.Spawn(gc.Name + "-" + strconv.Itoa(i))
			g.members = append(g.members, id)
			s.accs[id] = &stats.Accumulator{}
			if g.table != nil {
				s.tables[id] = g.table
			}
			buckets[i%len(sources)] = append(buckets[i%len(sources)], id)
		}
		for i, src := range sources {
			lab.RNG(src, g.pair).LinkTargets(buckets[i]...)
		}

		if gc.SourceName() == spec.GlobalSource && !containsPair(s.globalPairs, g.pair) {
			s.globalPairs = append(s.globalPairs, g.pair)
		}
		if !containsKind(s.kinds, k) {
			s.kinds = append(s.kinds, k)
		}
		s.groups = append(s.groups, g)
		byName[gc.Name] = g
	}
	if err := lab.Flush(); err != nil {
		return nil, err
	}
	if err := s.Reseed(); err != nil {
		return nil, err
	}
	s.reseeds = 0
	return s, nil
}

func rootSeed(reg *core.Registry, k core.Kind, gc spec.GlobalConfig) (rng.Seed, error) {
	switch {
	case gc.Seed != "":
		return rng.ParseSeed(reg, k.Name(), gc.Seed)
	case gc.SeedU64 != nil:
		return rng.ExpandSeed(k, *gc.SeedU64), nil
	default:
		return rng.SeedFromOS(k)
	}
}

func (s *Simulator) Lab() *Lab                { return s.lab }
func (s *Simulator) Scenario() *spec.Scenario { return s.sc }
func (s *Simulator) Global() world.ID         { return s.global }

// RootSeed 本次模擬使用的根 seed，保存後即可重現。
func (s *Simulator) RootSeed() rng.Seed { return s.root }

// Members 群組成員，依建立順序。
func (s *Simulator) Members(group string) []world.ID {
	for _, g := range s.groups {
		if g.cfg.Name == group {
			return append([]world.ID(nil), g.members...)
		}
	}
	return nil
}

// Reseed 由全域來源對所有直接連結的群組送出 SeedLinked；下游群組經由自動連鎖重新派生。
func (s *Simulator) Reseed() error {
	for _, p := range s.globalPairs {
		s.lab.Send(SeedLinked{Source: s.global, Pair: p})
	}
	s.reseeds++
	return s.lab.Flush()
}

// Sim 單 worker 執行情境設定的步數。
func (s *Simulator) Sim(showpb bool) (*stats.Report, time.Duration, error) {
	return s.SimMP(1, showpb)
}

// SimMP 以 workers 個 goroutine 執行情境設定的步數，回傳統計結果與用時。
// 相同根 seed 下，結果與 workers 數量無關。
func (s *Simulator) SimMP(workers int, showpb bool) (*stats.Report, time.Duration, error) {
	if workers <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	s.reset()

	bar := pb.StartNew(s.sc.Steps)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < s.sc.Steps; i++ {
		if err := s.step(workers); err != nil {
			bar.Finish()
			return nil, 0, err
		}
		if every := s.sc.ReseedEvery; every > 0 && (i+1)%every == 0 && i+1 < s.sc.Steps {
			if err := s.Reseed(); err != nil {
				bar.Finish()
				return nil, 0, err
			}
		}
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	return s.report(workers), used, nil
}

// Advance 執行 n 步但不重置統計，供伺服器逐步推進。
func (s *Simulator) Advance(n, workers int) error {
	if workers <= 0 || n < 0 {
		return errs.NewWarn("steps must >= 0 and workers must > 0")
	}
	for i := 0; i < n; i++ {
		if err := s.step(workers); err != nil {
			return err
		}
	}
	return nil
}

// Report 目前累計的統計結果。
func (s *Simulator) Report(workers int) *stats.Report { return s.report(workers) }

func (s *Simulator) step(workers int) error {
	draws := s.sc.Draws
	for _, k := range s.kinds {
		err := s.lab.Step(k, workers, func(ctx *StepCtx) {
			acc := s.accs[ctx.ID]
			if acc == nil {
				return
			}
			table := s.tables[ctx.ID]
			if table == nil {
				for d := 0; d < draws; d++ {
					acc.Add(ctx.Entropy.Uint64())
				}
				return
			}
			c := ctx.Entropy.Core()
			for d := 0; d < draws; d++ {
				acc.Add(c.Uint64())
				acc.AddOutcome(table.Pick(c))
			}
		})
		if err != nil {
			return err
		}
	}
	s.steps++
	return nil
}

func (s *Simulator) report(workers int) *stats.Report {
	r := &stats.Report{
		Scenario: s.sc.Name,
		Steps:    s.steps,
		Workers:  workers,
		Reseeds:  s.reseeds,
		Commands: s.lab.World().Applied(),
	}
	for _, g := range s.groups {
		accs := make([]*stats.Accumulator, 0, len(g.members))
		for _, id := range g.members {
			if s.lab.World().Alive(id) {
				accs = append(accs, s.accs[id])
			}
		}
		sr := stats.NewStreamReport(g.cfg.Name, g.kind.Name(), accs)
		if g.table != nil {
			sr.FitOutcomes(g.cfg.Weights)
		}
		r.Groups = append(r.Groups, sr)
	}
	return r
}

func (s *Simulator) reset() {
	for _, a := range s.accs {
		*a = stats.Accumulator{}
	}
	s.reseeds = 0
	s.steps = 0
}

func containsPair(ps []link.Pair, p link.Pair) bool {
	for _, x := range ps {
		if x == p {
			return true
		}
	}
	return false
}

func containsKind(ks []core.Kind, k core.Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}
