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

const (
	wyP0 = 0xa0761d6478bd642f
	wyP1 = 0xe7037ed1a0b428db
)

var wyMagic = []byte("wyrand:")

// KindWyRand 64-bit 狀態的 WyRand，8-byte seed。適合大量、短命的 target。
var KindWyRand Kind = wyrandKind{}

type wyrandKind struct{}

func (wyrandKind) Name() string  { return "wyrand" }
func (wyrandKind) SeedSize() int { return 8 }

func (k wyrandKind) New(seed []byte) (PRNG, error) {
	if err := checkSeed(k, seed); err != nil {
		return nil, err
	}
	return NewWyRand(binary.LittleEndian.Uint64(seed)), nil
}

type WyRand struct {
	state uint64
}

func NewWyRand(seed uint64) *WyRand {
	return &WyRand{state: seed}
}

func (r *WyRand) Uint64() uint64 {
	r.state += wyP0
	hi, lo := bits.Mul64(r.state, r.state^wyP1)
	return hi ^ lo
}

func (r *WyRand) Uint32() uint32     { return uint32(r.Uint64()) }
func (r *WyRand) FillBytes(p []byte) { FillFromUint64(p, r.Uint64) }

// State 目前內部狀態（等同下次輸出前的位置）。
func (r *WyRand) State() uint64 { return r.state }

func (r *WyRand) Snapshot() ([]byte, error) {
	return binary.LittleEndian.AppendUint64(append([]byte(nil), wyMagic...), r.state), nil
}

func (r *WyRand) Restore(data []byte) error {
	body, ok := bytes.CutPrefix(data, wyMagic)
	if !ok || len(body) != 8 {
		return badState(KindWyRand, "malformed snapshot (%d bytes)", len(data))
	}
	r.state = binary.LittleEndian.Uint64(body)
	return nil
}
