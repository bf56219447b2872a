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

package v1

import (
	"net/http"
	"time"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/stats"
)

type stepRequest struct {
	Steps   int `json:"steps"`
	Workers int `json:"workers"`
}

type stepResponse struct {
	Report   *stats.Report `json:"report"`
	UsedTime int64         `json:"used_ms"`
}

// Step POST /v1/step 推進模擬並回傳累計統計。steps 預設 1，workers 預設 1。
func (h *Handler) Step(w http.ResponseWriter, r *http.Request) {
	req := stepRequest{}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Steps == 0 {
		req.Steps = 1
	}
	if req.Workers == 0 {
		req.Workers = 1
	}
	if req.Steps < 0 || req.Steps > h.maxSteps {
		h.fail(w, r, errs.Warnf("steps must be between 1 and %d", h.maxSteps))
		return
	}
	if req.Workers < 0 || req.Workers > h.maxWorkers {
		h.fail(w, r, errs.Warnf("workers must be between 1 and %d", h.maxWorkers))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	start := time.Now()
	if err := h.sim.Advance(req.Steps, req.Workers); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stepResponse{
		Report:   h.sim.Report(req.Workers),
		UsedTime: time.Since(start).Milliseconds(),
	})
}

// Report GET /v1/report
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, h.sim.Report(1))
}
