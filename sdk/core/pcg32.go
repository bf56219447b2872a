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

import (
	"bytes"
	"encoding/binary"
	"math/bits"
)

const pcg32Multiplier = 6364136223846793005

var pcg32Magic = []byte("pcg32:")

// KindPCG32 64-bit 狀態、32-bit 輸出的 PCG (XSH RR)。
// seed 前 8 bytes 為初始狀態，後 8 bytes 為 stream 編號。
var KindPCG32 Kind = pcg32Kind{}

type pcg32Kind struct{}

func (pcg32Kind) Name() string  { return "pcg32" }
func (pcg32Kind) SeedSize() int { return 16 }

func (k pcg32Kind) New(seed []byte) (PRNG, error) {
	if err := checkSeed(k, seed); err != nil {
		return nil, err
	}
	return NewPCG32(binary.LittleEndian.Uint64(seed[0:8]), binary.LittleEndian.Uint64(seed[8:16])), nil
}

// PCG32 為 64-bit 狀態、32-bit 輸出的 PCG 產生器。
type PCG32 struct {
	state uint64
	inc   uint64
}

// NewPCG32 依 PCG 建議流程初始化：先以 stream 走一步，加上 seed，再走一步。
func NewPCG32(seed, stream uint64) *PCG32 {
	r := &PCG32{state: 0, inc: (stream << 1) | 1}
	r.step()
	r.state += seed
	r.step()
	return r
}

func (r *PCG32) Uint32() uint32 { return r.step() }

// Uint64 由兩次 32-bit 輸出組成，先取得的為高位。
func (r *PCG32) Uint64() uint64 {
	return (uint64(r.step()) << 32) | uint64(r.step())
}

func (r *PCG32) FillBytes(p []byte) { FillFromUint64(p, r.Uint64) }

// Snapshot 格式：magic + state(BE) + inc(BE)
func (r *PCG32) Snapshot() ([]byte, error) {
	b := make([]byte, 0, len(pcg32Magic)+16)
	b = append(b, pcg32Magic...)
	b = binary.BigEndian.AppendUint64(b, r.state)
	b = binary.BigEndian.AppendUint64(b, r.inc)
	return b, nil
}

func (r *PCG32) Restore(data []byte) error {
	body, ok := bytes.CutPrefix(data, pcg32Magic)
	if !ok || len(body) != 16 {
		return badState(KindPCG32, "malformed snapshot (%d bytes)", len(data))
	}
	inc := binary.BigEndian.Uint64(body[8:])
	if inc&1 == 0 {
		return badState(KindPCG32, "increment must be odd")
	}
	r.state = binary.BigEndian.Uint64(body[:8])
	r.inc = inc
	return nil
}

func (r *PCG32) step() uint32 {
	old := r.state
	r.state = old*pcg32Multiplier + r.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return bits.RotateLeft32(xorshifted, -int(rot))
}
