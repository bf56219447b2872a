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

package core

import r2 "math/rand/v2"

// KindChaCha8 以標準庫 ChaCha8 實作，32-byte seed。
var KindChaCha8 Kind = chacha8Kind{}

type chacha8Kind struct{}

func (chacha8Kind) Name() string  { return "chacha8" }
func (chacha8Kind) SeedSize() int { return 32 }

func (k chacha8Kind) New(seed []byte) (PRNG, error) {
	if err := checkSeed(k, seed); err != nil {
		return nil, err
	}
	return NewChaCha8([32]byte(seed)), nil
}

// ChaCha8 包裝 math/rand/v2 的 ChaCha8。
type ChaCha8 struct {
	rng *r2.ChaCha8
}

func NewChaCha8(seed [32]byte) *ChaCha8 {
	return &ChaCha8{rng: r2.NewChaCha8(seed)}
}

func (r *ChaCha8) Uint64() uint64 { return r.rng.Uint64() }

// Uint32 取一個 64-bit 字組的低 32 位元。
func (r *ChaCha8) Uint32() uint32 { return uint32(r.rng.Uint64()) }

func (r *ChaCha8) FillBytes(p []byte) { FillFromUint64(p, r.rng.Uint64) }

func (r *ChaCha8) Snapshot() ([]byte, error) {
	return r.rng.MarshalBinary()
}

func (r *ChaCha8) Restore(data []byte) error {
	if err := r.rng.UnmarshalBinary(data); err != nil {
		return badState(KindChaCha8, "%v", err)
	}
	return nil
}
