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

package world

import "strconv"

// ID 物件代號：槽位索引 + 世代。槽位被回收後世代加一，舊 ID 因此失效。
type ID struct {
	Index uint32 `json:"index" yaml:"index"`
	Gen   uint32 `json:"gen" yaml:"gen"`
}

// Nil 永遠無效的 ID（世代從 1 起算）。
var Nil = ID{}

func (id ID) IsNil() bool { return id.Gen == 0 }

// String 例如 "12v3"
func (id ID) String() string {
	return strconv.FormatUint(uint64(id.Index), 10) + "v" + strconv.FormatUint(uint64(id.Gen), 10)
}

// Less 以 (Index, Gen) 排序，作為所有「依物件順序」處理的依據。
func (id ID) Less(o ID) bool {
	if id.Index != o.Index {
		return id.Index < o.Index
	}
	return id.Gen < o.Gen
}

// Compare 供 slices.SortFunc 使用。
func Compare(a, b ID) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

// ParseID 解析 String 的輸出。
func ParseID(s string) (ID, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != 'v' {
			continue
		}
		idx, err1 := strconv.ParseUint(s[:i], 10, 32)
		gen, err2 := strconv.ParseUint(s[i+1:], 10, 32)
		if err1 != nil || err2 != nil || gen == 0 {
			return Nil, false
		}
		return ID{Index: uint32(idx), Gen: uint32(gen)}, true
	}
	return Nil, false
}
