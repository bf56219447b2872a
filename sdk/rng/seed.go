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

// Package rng 提供 seed 與 entropy 兩種值，以及在兩者之間 fork 的協定。
//
//   - Seed：固定長度的 seed bytes + 演算法，是「要被重現」的那一份資料。
//   - Entropy：由 Seed 建立、正在被使用的亂數實例。
//
// 所有 fork 操作都從呼叫者自己的串流抽 bytes，因此會推進呼叫者。
// 同一個根 seed、同樣的呼叫順序，永遠得到位元相同的結果。
package rng

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/entropy"
)

// Seed 某演算法的 seed 值。零值不可用。
type Seed struct {
	kind  core.Kind
	bytes []byte
}

// NewSeed 複製 b 建立 Seed，長度必須等於 k.SeedSize()。
func NewSeed(k core.Kind, b []byte) (Seed, error) {
	if k == nil {
		return Seed{}, errs.Detail(errs.ErrUnknownKind, "nil kind")
	}
	if len(b) != k.SeedSize() {
		return Seed{}, errs.Detail(errs.ErrSeedSize, "%s: want %d bytes, got %d", k.Name(), k.SeedSize(), len(b))
	}
	return Seed{kind: k, bytes: bytes.Clone(b)}, nil
}

// MustSeed 同 NewSeed，失敗直接 panic。
func MustSeed(k core.Kind, b []byte) Seed {
	s, err := NewSeed(k, b)
	if err != nil {
		panic(err)
	}
	return s
}

// SeedFromOS 以 OS entropy 產生 seed。
func SeedFromOS(k core.Kind) (Seed, error) {
	b := make([]byte, k.SeedSize())
	if err := entropy.FillOS(b); err != nil {
		return Seed{}, err
	}
	return Seed{kind: k, bytes: b}, nil
}

func MustSeedFromOS(k core.Kind) Seed {
	s, err := SeedFromOS(k)
	if err != nil {
		panic(err)
	}
	return s
}

// SeedFromLocal 以共用快取產生 seed，速度遠快於 SeedFromOS。
func SeedFromLocal(k core.Kind) (Seed, error) {
	return SeedFromCache(entropy.Shared(), k)
}

// SeedFromCache 以指定快取產生 seed。
func SeedFromCache(c *entropy.Cache, k core.Kind) (Seed, error) {
	b := make([]byte, k.SeedSize())
	if err := c.Fill(b); err != nil {
		return Seed{}, err
	}
	return Seed{kind: k, bytes: b}, nil
}

// ExpandSeed 將整數展開成 k 的 seed，供命令列以數字指定根 seed。
func ExpandSeed(k core.Kind, v uint64) Seed {
	return Seed{kind: k, bytes: core.ExpandUint64(v, k.SeedSize())}
}

func (s Seed) Kind() core.Kind { return s.kind }

// IsZero 未初始化的 Seed
func (s Seed) IsZero() bool { return s.kind == nil }

// Bytes 回傳 seed 的副本。
func (s Seed) Bytes() []byte { return bytes.Clone(s.bytes) }

func (s Seed) Equal(o Seed) bool {
	return s.kind == o.kind && bytes.Equal(s.bytes, o.bytes)
}

// String 十六進位表示（含演算法名稱）。
func (s Seed) String() string {
	if s.kind == nil {
		return "<nil seed>"
	}
	return s.kind.Name() + ":" + hex.EncodeToString(s.bytes)
}

// Entropy 由 seed 建立新的實例，從位置 0 開始。
func (s Seed) Entropy() (*Entropy, error) {
	if s.kind == nil {
		return nil, errs.Detail(errs.ErrUnknownKind, "seed has no kind")
	}
	src, err := s.kind.New(s.bytes)
	if err != nil {
		return nil, err
	}
	return &Entropy{kind: s.kind, src: src}, nil
}

// MustEntropy 同 Entropy，失敗直接 panic。
func (s Seed) MustEntropy() *Entropy {
	e, err := s.Entropy()
	if err != nil {
		panic(err)
	}
	return e
}

// MarshalBinary 序列化格式即為原始 seed bytes。演算法由外層決定。
func (s Seed) MarshalBinary() ([]byte, error) {
	return bytes.Clone(s.bytes), nil
}

// SeedFromBinary 以已知演算法還原 MarshalBinary 的輸出。
func SeedFromBinary(k core.Kind, data []byte) (Seed, error) {
	return NewSeed(k, data)
}

type seedJSON struct {
	Kind string `json:"kind" yaml:"kind"`
	Seed string `json:"seed" yaml:"seed"`
}

// MarshalJSON {"kind":"chacha8","seed":"<hex>"}
func (s Seed) MarshalJSON() ([]byte, error) {
	if s.kind == nil {
		return []byte("null"), nil
	}
	return json.Marshal(seedJSON{Kind: s.kind.Name(), Seed: hex.EncodeToString(s.bytes)})
}

// ParseSeed 以 registry 解析演算法名稱與十六進位 seed。
func ParseSeed(reg *core.Registry, kind, hexSeed string) (Seed, error) {
	k, err := reg.Lookup(kind)
	if err != nil {
		return Seed{}, err
	}
	b, err := hex.DecodeString(hexSeed)
	if err != nil {
		return Seed{}, errs.WrapWithExtra(errs.Detail(errs.ErrBadConfig, "seed is not hex"), "parse seed", err.Error())
	}
	return NewSeed(k, b)
}

// UnmarshalSeedJSON 解析 MarshalJSON 的輸出。Seed 本身不帶 registry，因此不實作 json.Unmarshaler。
func UnmarshalSeedJSON(reg *core.Registry, data []byte) (Seed, error) {
	var sj seedJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return Seed{}, errs.Wrap(errs.Detail(errs.ErrBadState, "seed json"), err.Error())
	}
	return ParseSeed(reg, sj.Kind, sj.Seed)
}
