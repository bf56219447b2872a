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

package seedlab

import (
	"sync"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/link"
	"github.com/zintix-labs/seedlab/sdk/rng"
	"github.com/zintix-labs/seedlab/sdk/world"
)

// StepCtx 單一物件在一次 Step 中可使用的資料與指令。
//
// Entropy 只屬於這個物件，同一時間只有一個 worker 會碰到它。
// 其他物件的資料不可在 Step 內讀寫；需要影響其他物件時請送出訊號。
type StepCtx struct {
	ID      world.ID
	Name    string
	Entropy *rng.Entropy

	lab *Lab
	buf *world.Buffer
}

// Commands 本物件專屬的指令緩衝。
func (c *StepCtx) Commands() *world.Buffer { return c.buf }

// Send 送出訊號，Step 結束時依物件順序併入。
func (c *StepCtx) Send(sigs ...Signal) { c.lab.sendTo(c.buf, sigs...) }

// RNG 本物件在 p 下的指令介面（不支援 SpawnTargets）。
func (c *StepCtx) RNG(p link.Pair) *RngCommands {
	return &RngCommands{l: c.lab, buf: c.buf, id: c.ID, pair: p}
}

// Step 對每個持有 k entropy 的物件呼叫 fn，分給 workers 個 goroutine 平行處理。
//
// 物件依 ID 排序後切成連續區段；每個物件的指令先寫入自己的緩衝，
// 全部完成後依物件順序併入世界佇列並 Flush。因此結果與 workers 數量無關。
func (l *Lab) Step(k core.Kind, workers int, fn func(*StepCtx)) error {
	if workers <= 0 {
		return errs.NewWarn("workers must > 0")
	}
	ids := l.w.WithEntropy(k)
	ctxs := make([]StepCtx, len(ids))
	for i, id := range ids {
		e, _ := l.w.Entropy(id, k)
		ctxs[i] = StepCtx{ID: id, Name: l.w.Name(id), Entropy: e, lab: l, buf: world.NewBuffer()}
	}
	if workers > len(ctxs) {
		workers = len(ctxs)
	}

	var (
		once   sync.Once
		failed any
	)
	wg := new(sync.WaitGroup)
	wg.Add(workers)
	n := len(ctxs)
	for i := 0; i < workers; i++ {
		go func(lo, hi int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { failed = r })
				}
			}()
			for j := lo; j < hi; j++ {
				fn(&ctxs[j])
			}
		}(i*n/workers, (i+1)*n/workers)
	}
	wg.Wait()
	// worker 內的 panic 交回呼叫端；已緩衝的指令全部丟棄
	if failed != nil {
		panic(failed)
	}

	for i := range ctxs {
		l.w.Append(ctxs[i].buf)
	}
	return l.Flush()
}
