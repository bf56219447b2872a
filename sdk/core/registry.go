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
	"fmt"
	"sort"

	"github.com/zintix-labs/seedlab/errs"
)

// Registry 以名稱查找 Kind。設定檔、快照與 HTTP 請求都只帶演算法名稱。
type Registry struct {
	kinds map[string]Kind
}

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind, 8)}
}

// Default 回傳包含所有內建演算法的 Registry。
func Default() *Registry {
	r := NewRegistry()
	for _, k := range Builtin() {
		_ = r.Register(k)
	}
	return r
}

// Builtin 內建演算法，順序固定。
func Builtin() []Kind {
	return []Kind{KindChaCha8, KindPCG64, KindPCG32, KindWyRand, KindXoshiro256}
}

func (r *Registry) Register(k Kind) error {
	if k == nil {
		return errs.NewFatal("nil rng kind")
	}
	if _, ok := r.kinds[k.Name()]; ok {
		return errs.Detail(errs.ErrDuplicateKind, "%s", k.Name())
	}
	r.kinds[k.Name()] = k
	return nil
}

func (r *Registry) Lookup(name string) (Kind, error) {
	k, ok := r.kinds[name]
	if !ok {
		return nil, errs.Detail(errs.ErrUnknownKind, "%q", name)
	}
	return k, nil
}

func (r *Registry) IsExist(name string) bool {
	_, ok := r.kinds[name]
	return ok
}

// Names 已註冊名稱（排序後）。
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.kinds))
	for n := range r.kinds {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MergeRegistry 合併多個 Registry。重複名稱一律視為錯誤，不採「後者覆蓋」。
func MergeRegistry(regs ...*Registry) (*Registry, error) {
	out := NewRegistry()
	origin := make(map[string]int, 8)
	for i, r := range regs {
		if r == nil {
			continue
		}
		for name, k := range r.kinds {
			if _, ok := out.kinds[name]; ok {
				return nil, errs.Detail(errs.ErrDuplicateKind, "%s (registry #%d and #%d)", name, origin[name], i)
			}
			out.kinds[name] = k
			origin[name] = i
		}
	}
	return out, nil
}

func checkSeed(k Kind, seed []byte) error {
	if len(seed) != k.SeedSize() {
		return errs.Detail(errs.ErrSeedSize, "%s: want %d bytes, got %d", k.Name(), k.SeedSize(), len(seed))
	}
	return nil
}

func badState(k Kind, format string, a ...any) error {
	return errs.Detail(errs.ErrBadState, "%s: %s", k.Name(), fmt.Sprintf(format, a...))
}
