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
	"cmp"
	"log/slog"
	"maps"
	"slices"

	"github.com/zintix-labs/seedlab/sdk/link"
	"github.com/zintix-labs/seedlab/sdk/rng"
	"github.com/zintix-labs/seedlab/sdk/world"
)

// Signal 要求重新派生 seed 的訊號。訊號在 Flush 時依送出順序處理，
// 目標物件或來源不存在時靜默略過。
type Signal interface {
	apply(l *Lab, w *world.World) error
	String() string
}

// SeedFromGlobal 由 Pair.Source 演算法的全域來源派生 Target 的 seed。
type SeedFromGlobal struct {
	Target world.ID
	Pair   link.Pair
}

// SeedFromSource 由 Target 在 Pair 下連結的 source 派生 seed。
type SeedFromSource struct {
	Target world.ID
	Pair   link.Pair
}

// SeedLinked 由 Source 依連結順序替每個 target 派生 seed，整批一次寫入。
type SeedLinked struct {
	Source world.ID
	Pair   link.Pair
}

func (s SeedFromGlobal) String() string { return "seed_from_global " + s.Target.String() + " " + s.Pair.String() }
func (s SeedFromSource) String() string { return "seed_from_source " + s.Target.String() + " " + s.Pair.String() }
func (s SeedLinked) String() string     { return "seed_linked " + s.Source.String() + " " + s.Pair.String() }

func (s SeedFromGlobal) apply(l *Lab, w *world.World) error {
	if !w.Alive(s.Target) {
		l.dropped(s, "target gone")
		return nil
	}
	gid, ok := l.Global(s.Pair.Source)
	if !ok {
		l.dropped(s, "no global source")
		return nil
	}
	src, ok := w.Entropy(gid, s.Pair.Source)
	if !ok {
		l.dropped(s, "global has no entropy")
		return nil
	}
	return w.InsertSeed(s.Target, src.ForkAsSeed(s.Pair.Target))
}

func (s SeedFromSource) apply(l *Lab, w *world.World) error {
	if !w.Alive(s.Target) {
		l.dropped(s, "target gone")
		return nil
	}
	sid, ok := l.g.SourceOf(s.Pair, s.Target)
	if !ok {
		l.dropped(s, "no source")
		return nil
	}
	src, ok := w.Entropy(sid, s.Pair.Source)
	if !ok {
		l.dropped(s, "source has no entropy")
		return nil
	}
	return w.InsertSeed(s.Target, src.ForkAsSeed(s.Pair.Target))
}

func (s SeedLinked) apply(l *Lab, w *world.World) error {
	if !w.Alive(s.Source) {
		l.dropped(s, "source gone")
		return nil
	}
	src, ok := w.Entropy(s.Source, s.Pair.Source)
	if !ok {
		l.dropped(s, "source has no entropy")
		return nil
	}
	targets := l.g.TargetsOf(s.Pair, s.Source)
	seeds := rng.ForkSeeds(src, s.Pair.Target, len(targets))
	for i, t := range targets {
		if !w.Alive(t) {
			l.dropped(s, "target gone")
			continue
		}
		if err := w.InsertSeed(t, seeds[i]); err != nil {
			return err
		}
	}
	return nil
}

// Send 將訊號依序排入世界佇列。
func (l *Lab) Send(sigs ...Signal) {
	l.sendTo(l.w.Commands().Buffer, sigs...)
}

func (l *Lab) sendTo(b *world.Buffer, sigs ...Signal) {
	for _, sig := range sigs {
		b.Push(func(w *world.World) error {
			return sig.apply(l, w)
		})
	}
}

func (l *Lab) dropped(sig Signal, reason string) {
	l.log.Debug("signal dropped", slog.String("signal", sig.String()), slog.String("reason", reason))
}

func sortedPairs[V any](m map[link.Pair]V) []link.Pair {
	return slices.SortedFunc(maps.Keys(m), func(a, b link.Pair) int {
		return cmp.Compare(a.String(), b.String())
	})
}
