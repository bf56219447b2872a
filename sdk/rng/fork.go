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

package rng

import "github.com/zintix-labs/seedlab/sdk/core"

// ForkSeedFrom 從 src 抽 k.SeedSize() bytes 作為 k 的 seed。src 會被推進。
func ForkSeedFrom(src core.Source, k core.Kind) Seed {
	b := make([]byte, k.SeedSize())
	src.FillBytes(b)
	return Seed{kind: k, bytes: b}
}

// ForkFrom 從 src 派生 k 的新實例。
func ForkFrom(src core.Source, k core.Kind) (*Entropy, error) {
	return ForkSeedFrom(src, k).Entropy()
}

// ForkSeeds 依序派生 n 個 seed，等同連續呼叫 n 次 ForkSeedFrom。
func ForkSeeds(src core.Source, k core.Kind, n int) []Seed {
	out := make([]Seed, n)
	for i := range out {
		out[i] = ForkSeedFrom(src, k)
	}
	return out
}

// Fork 派生同演算法的新實例。
func (e *Entropy) Fork() *Entropy {
	return ForkSeedFrom(e.src, e.kind).MustEntropy()
}

// ForkAs 派生另一演算法的新實例。
func (e *Entropy) ForkAs(k core.Kind) *Entropy {
	return ForkSeedFrom(e.src, k).MustEntropy()
}

// ForkSeed 派生同演算法的 seed。
func (e *Entropy) ForkSeed() Seed {
	return ForkSeedFrom(e.src, e.kind)
}

// ForkAsSeed 派生另一演算法的 seed。
func (e *Entropy) ForkAsSeed(k core.Kind) Seed {
	return ForkSeedFrom(e.src, k)
}

// ForkInner 派生同演算法的裸實例（不帶 Entropy 包裝）。
func (e *Entropy) ForkInner() core.PRNG {
	return e.Fork().src
}

// ForkInnerSeed 派生同演算法的裸 seed bytes。
func (e *Entropy) ForkInnerSeed() []byte {
	b := make([]byte, e.kind.SeedSize())
	e.src.FillBytes(b)
	return b
}
