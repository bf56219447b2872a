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

import (
	"encoding/base64"
	"encoding/json"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
)

// Entropy 持有一個亂數實例。同一時間只能有一個擁有者。
type Entropy struct {
	kind core.Kind
	src  core.PRNG
}

// NewEntropy 直接以 seed bytes 建立實例。
func NewEntropy(k core.Kind, seed []byte) (*Entropy, error) {
	s, err := NewSeed(k, seed)
	if err != nil {
		return nil, err
	}
	return s.Entropy()
}

func (e *Entropy) Kind() core.Kind    { return e.kind }
func (e *Entropy) Uint32() uint32     { return e.src.Uint32() }
func (e *Entropy) Uint64() uint64     { return e.src.Uint64() }
func (e *Entropy) FillBytes(p []byte) { e.src.FillBytes(p) }

// Core 回傳共用此實例的取樣工具。
func (e *Entropy) Core() *core.Core { return core.New(e.src) }

func (e *Entropy) Snapshot() ([]byte, error) { return e.src.Snapshot() }

func (e *Entropy) Restore(data []byte) error { return e.src.Restore(data) }

// Clone 以快照建立獨立副本，兩者之後的輸出相同但互不影響。
func (e *Entropy) Clone() (*Entropy, error) {
	snap, err := e.src.Snapshot()
	if err != nil {
		return nil, err
	}
	src, err := e.kind.New(make([]byte, e.kind.SeedSize()))
	if err != nil {
		return nil, err
	}
	if err := src.Restore(snap); err != nil {
		return nil, err
	}
	return &Entropy{kind: e.kind, src: src}, nil
}

// State 可序列化的狀態：演算法標籤 + 不透明的狀態資料。
type State struct {
	Kind string `json:"kind" yaml:"kind"`
	Data []byte `json:"state" yaml:"state"`
}

// State 取得目前狀態。
func (e *Entropy) State() (State, error) {
	data, err := e.src.Snapshot()
	if err != nil {
		return State{}, errs.Wrap(err, "snapshot entropy")
	}
	return State{Kind: e.kind.Name(), Data: data}, nil
}

// FromState 以 registry 還原 State。
func FromState(reg *core.Registry, st State) (*Entropy, error) {
	k, err := reg.Lookup(st.Kind)
	if err != nil {
		return nil, err
	}
	src, err := k.New(make([]byte, k.SeedSize()))
	if err != nil {
		return nil, err
	}
	if err := src.Restore(st.Data); err != nil {
		return nil, err
	}
	return &Entropy{kind: k, src: src}, nil
}

// MarshalJSON {"kind":"...","state":"<base64>"}
func (e *Entropy) MarshalJSON() ([]byte, error) {
	st, err := e.State()
	if err != nil {
		return nil, err
	}
	return json.Marshal(st)
}

// UnmarshalEntropyJSON 解析 MarshalJSON 的輸出。
func UnmarshalEntropyJSON(reg *core.Registry, data []byte) (*Entropy, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errs.Wrap(errs.Detail(errs.ErrBadState, "entropy json"), err.Error())
	}
	return FromState(reg, st)
}

// StateString 緊湊表示，方便 log 與除錯輸出。
func (st State) String() string {
	return st.Kind + ":" + base64.RawStdEncoding.EncodeToString(st.Data)
}
