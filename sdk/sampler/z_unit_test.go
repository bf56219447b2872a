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

package sampler

import (
	"math"
	"testing"

	"github.com/zintix-labs/seedlab/sdk/core"
)

func newCore(t *testing.T, v uint64) *core.Core {
	t.Helper()
	src, err := core.KindWyRand.New(core.ExpandUint64(v, core.KindWyRand.SeedSize()))
	if err != nil {
		t.Fatal(err)
	}
	return core.New(src)
}

// checkDistribution 每個索引的實際比例與權重比例差距不超過 tolerance。
func checkDistribution(t *testing.T, weights []int, counts []int, n int, tolerance float64) {
	t.Helper()
	total := 0
	for _, w := range weights {
		total += w
	}
	for i, w := range weights {
		want := float64(w) / float64(total)
		got := float64(counts[i]) / float64(n)
		if w == 0 && counts[i] != 0 {
			t.Fatalf("index %d has zero weight but was picked %d times", i, counts[i])
		}
		if math.Abs(got-want) > tolerance {
			t.Fatalf("index %d: got %.4f want %.4f", i, got, want)
		}
	}
}

func TestAliasTableDistribution(t *testing.T) {
	cases := [][]int{
		{1},
		{1, 1, 1, 1},
		{10, 0, 30, 60},
		{1, 999},
		{7, 3, 0, 0, 5, 1, 9},
	}
	const n = 200_000
	for _, w := range cases {
		at := MustAliasTable(w)
		c := newCore(t, 42)
		counts := make([]int, len(w))
		for i := 0; i < n; i++ {
			counts[at.Pick(c)]++
		}
		checkDistribution(t, w, counts, n, 0.01)
	}
}

func TestAliasTableDeterministic(t *testing.T) {
	at := MustAliasTable([]int{5, 1, 4})
	a, b := newCore(t, 7), newCore(t, 7)
	for i := 0; i < 1000; i++ {
		if x, y := at.Pick(a), at.Pick(b); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}

func TestAliasTableErrors(t *testing.T) {
	bad := [][]int{
		nil,
		{0, 0},
		{1, -1},
		{math.MaxInt, 1},
		{math.MaxInt / 2, math.MaxInt / 4},
	}
	for _, w := range bad {
		if _, err := NewAliasTable(w); err == nil {
			t.Fatalf("weights %v should fail", w)
		}
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("MustAliasTable should panic")
		}
	}()
	MustAliasTable([]int{0})
}

func TestAliasTableAccessors(t *testing.T) {
	w := []int{2, 3}
	at := MustAliasTable(w)
	w[0] = 100
	if at.Len() != 2 || at.Total() != 5 || at.Weights()[0] != 2 {
		t.Fatalf("len %d total %d weights %v", at.Len(), at.Total(), at.Weights())
	}
}
