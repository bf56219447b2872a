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

// The PCG algorithm is designed by Melissa O'Neill.

package core

import (
	"encoding/binary"
	r2 "math/rand/v2"
)

// KindPCG64 以標準庫 PCG (128-bit 狀態) 實作，16-byte seed。
var KindPCG64 Kind = pcg64Kind{}

type pcg64Kind struct{}

func (pcg64Kind) Name() string  { return "pcg64" }
func (pcg64Kind) SeedSize() int { return 16 }

func (k pcg64Kind) New(seed []byte) (PRNG, error) {
	if err := checkSeed(k, seed); err != nil {
		return nil, err
	}
	hi := binary.LittleEndian.Uint64(seed[0:8])
	lo := binary.LittleEndian.Uint64(seed[8:16])
	return NewPCG64(hi, lo), nil
}

// PCG64 亂數產生器
type PCG64 struct {
	rng *r2.PCG
}

func NewPCG64(hi, lo uint64) *PCG64 {
	return &PCG64{rng: r2.NewPCG(hi, lo)}
}

func (r *PCG64) Uint64() uint64     { return r.rng.Uint64() }
func (r *PCG64) Uint32() uint32     { return uint32(r.rng.Uint64() >> 32) }
func (r *PCG64) FillBytes(p []byte) { FillFromUint64(p, r.rng.Uint64) }

// Snapshot 取得當下內部狀態
func (r *PCG64) Snapshot() ([]byte, error) {
	return r.rng.MarshalBinary()
}

// Restore 恢復內部狀態
func (r *PCG64) Restore(data []byte) error {
	if err := r.rng.UnmarshalBinary(data); err != nil {
		return badState(KindPCG64, "%v", err)
	}
	return nil
}
