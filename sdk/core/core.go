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

// Package core 定義亂數演算法的能力合約，以及內建的幾種演算法。
//
// 上層（rng / world / seedlab）只透過 Kind 與 PRNG 操作演算法，
// 不關心具體實作。每個 Kind 都必須滿足：
//   - New(seed) 是決定性的：相同 seed 產生相同的輸出序列。
//   - SeedSize() 固定不變。
//   - 產生的 PRNG 可以 Snapshot / Restore。
package core

import "math/bits"

// Source 核心亂數輸出能力。每次呼叫都會推進內部位置。
//
// Source 不保證併發安全，同一時間只能由一個擁有者使用。
type Source interface {
	Uint32() uint32
	Uint64() uint64
	// FillBytes 以亂數填滿 p。
	FillBytes(p []byte)
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原內部狀態。還原後接續的輸出必須與快照當下一致。
	Restore([]byte) error
}

// PRNG 是 Kind 產出的實例：可取樣也可保存狀態。
type PRNG interface {
	Source
	Restorable
}

// Kind 描述一種亂數演算法。
//
// 實作必須是可比較的值（通常是空 struct），因為 Kind 會被當作 map key 使用。
type Kind interface {
	// Name 演算法的穩定名稱，用於序列化標籤與設定檔。
	Name() string
	// SeedSize seed 的位元組長度。
	SeedSize() int
	// New 以 seed 建立實例。seed 長度錯誤時回傳 errs.ErrSeedSize。
	New(seed []byte) (PRNG, error)
}

// Core 在任意 Source 之上提供常用取樣方法。
type Core struct {
	Source
}

// New 包裝 Source 成 Core。
func New(src Source) *Core {
	return &Core{src}
}

// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
func (c *Core) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(c.uint64n(uint64(max)))
}

// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
func (c *Core) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(c.uint64n(uint64(max)))
}

// Float64 回傳 [0,1) 的浮點亂數（53-bit 精度）。
func (c *Core) Float64() float64 {
	return float64(c.Uint64()<<11>>11) / (1 << 53)
}

// Bool 以機率 p 回傳 true。
func (c *Core) Bool(p float64) bool {
	return c.Float64() < p
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

// ShuffleInts 以 Fisher-Yates 演算法就地重排 src。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// uint64n 回傳 [0,n) 的無偏亂數（乘法高位 + 拒絕採樣）。
func (c *Core) uint64n(n uint64) uint64 {
	if n&(n-1) == 0 {
		return c.Uint64() & (n - 1)
	}
	hi, lo := bits.Mul64(c.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(c.Uint64(), n)
		}
	}
	return hi
}
