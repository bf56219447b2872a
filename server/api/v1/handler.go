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

// Package v1 檢視與操作執行中模擬的 HTTP API。
package v1

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/server/httperr"
	"github.com/zintix-labs/seedlab/server/svrcfg"
	"github.com/zintix-labs/seedlab/store/sqlite"
)

const maxBody = 1 << 20

// Handler 持有模擬器。Lab 不能並行使用，所有請求都在 mu 之下處理。
type Handler struct {
	mu         sync.Mutex
	sim        *seedlab.Simulator
	store      *sqlite.Store
	log        *slog.Logger
	maxWorkers int
	maxSteps   int
}

func NewHandler(sc *svrcfg.SvrCfg) (*Handler, error) {
	if err := sc.Valid(); err != nil {
		return nil, err
	}
	return &Handler{
		sim:        sc.Sim,
		store:      sc.Store,
		log:        sc.Log,
		maxWorkers: sc.MaxWorkers,
		maxSteps:   sc.MaxSteps,
	}, nil
}

// HasStore 是否設定了快照儲存。
func (h *Handler) HasStore() bool { return h.store != nil }

func (h *Handler) lab() *seedlab.Lab { return h.sim.Lab() }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail 回寫錯誤並記錄伺服器端錯誤。
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperr.Log(h.log, r.Method+" "+r.URL.Path, err)
	httperr.Write(w, err)
}

// decode 讀取 JSON body。空 body 視為零值請求。
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err == nil || err == io.EOF {
		return nil
	}
	return errs.NewWarn("invalid json: " + err.Error())
}
