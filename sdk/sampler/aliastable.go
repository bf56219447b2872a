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

// Package sampler 以整數 Vose alias method 做 O(1) 加權抽樣。
//
// 每次抽樣固定消耗兩個亂數（選槽、選自己或別名），抽樣本身不做浮點運算，
// 因此同一串流、同一權重表的結果在各平台上一致。
package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
)

// AliasTable 建好後唯讀，可被多個 goroutine 同時使用（各自帶自己的 Core）。
type AliasTable struct {
	prob    []int
	aliases []int
	weights []int
	total   int
}

// NewAliasTable 權重不需正規化，可含 0，但不可為負，也不可全為 0。
func NewAliasTable(weights []int) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, errs.NewWarn("alias table: no weights")
	}
	total := 0
	for i, w := range weights {
		if w < 0 {
			return nil, errs.Warnf("alias table: negative weight at %d", i)
		}
		if total > math.MaxInt-w {
			return nil, errs.NewWarn("alias table: total weight overflows int")
		}
		total += w
	}
	if total == 0 {
		return nil, errs.NewWarn("alias table: all weights are zero")
	}
	// w*n 不可溢位
	if hi, lo := bits.Mul64(uint64(total), uint64(n)); hi != 0 || lo > math.MaxInt64 {
		return nil, errs.NewWarn("alias table: weights too large")
	}

	at := &AliasTable{
		prob:    make([]int, n),
		aliases: make([]int, n),
		weights: append([]int(nil), weights...),
		total:   total,
	}
	var small, large []int
	for i, w := range weights {
		at.prob[i] = w * n
		at.aliases[i] = i
		if at.prob[i] < total {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		// sum(prob) == total*n 不變
		at.aliases[s] = l
		at.prob[l] += at.prob[s] - total
		if at.prob[l] < total {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 剩下的槽整數誤差為 0，直接視為滿格
	for _, i := range large {
		at.prob[i] = total
	}
	for _, i := range small {
		at.prob[i] = total
	}
	return at, nil
}

// MustAliasTable 權重不合法時 panic，用於固定的權重表。
func MustAliasTable(weights []int) *AliasTable {
	at, err := NewAliasTable(weights)
	if err != nil {
		panic(err)
	}
	return at
}

func (at *AliasTable) Len() int { return len(at.prob) }

func (at *AliasTable) Total() int { return at.total }

// Weights 建表時的權重（複本）。
func (at *AliasTable) Weights() []int { return append([]int(nil), at.weights...) }

// Pick 抽出一個索引。
func (at *AliasTable) Pick(c *core.Core) int {
	idx := c.IntN(len(at.prob))
	if c.IntN(at.total) < at.prob[idx] {
		return idx
	}
	return at.aliases[idx]
}
