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

var xoshiroMagic = []byte("xoshiro256:")

// KindXoshiro256 xoshiro256**，32-byte seed。
var KindXoshiro256 Kind = xoshiroKind{}

type xoshiroKind struct{}

func (xoshiroKind) Name() string  { return "xoshiro256" }
func (xoshiroKind) SeedSize() int { return 32 }

func (k xoshiroKind) New(seed []byte) (PRNG, error) {
	if err := checkSeed(k, seed); err != nil {
		return nil, err
	}
	var s [4]uint64
	for i := range s {
		s[i] = binary.LittleEndian.Uint64(seed[i*8:])
	}
	return NewXoshiro256(s), nil
}

// Xoshiro256 xoshiro256** 產生器。
type Xoshiro256 struct {
	s [4]uint64
}

// NewXoshiro256 全零狀態會讓產生器卡在 0，此時改以 splitmix64 展開。
func NewXoshiro256(s [4]uint64) *Xoshiro256 {
	if s == [4]uint64{} {
		x := uint64(0)
		for i := range s {
			x += 0x9e3779b97f4a7c15
			s[i] = splitmix64(x)
		}
	}
	return &Xoshiro256{s: s}
}

func (r *Xoshiro256) Uint64() uint64 {
	s := &r.s
	result := bits.RotateLeft64(s[1]*5, 7) * 9
	t := s[1] << 17
	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)
	return result
}

func (r *Xoshiro256) Uint32() uint32     { return uint32(r.Uint64() >> 32) }
func (r *Xoshiro256) FillBytes(p []byte) { FillFromUint64(p, r.Uint64) }

func (r *Xoshiro256) Snapshot() ([]byte, error) {
	b := append([]byte(nil), xoshiroMagic...)
	for _, v := range r.s {
		b = binary.LittleEndian.AppendUint64(b, v)
	}
	return b, nil
}

func (r *Xoshiro256) Restore(data []byte) error {
	body, ok := bytes.CutPrefix(data, xoshiroMagic)
	if !ok || len(body) != 32 {
		return badState(KindXoshiro256, "malformed snapshot (%d bytes)", len(data))
	}
	var s [4]uint64
	for i := range s {
		s[i] = binary.LittleEndian.Uint64(body[i*8:])
	}
	if s == [4]uint64{} {
		return badState(KindXoshiro256, "all-zero state")
	}
	r.s = s
	return nil
}
