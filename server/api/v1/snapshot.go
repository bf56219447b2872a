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

	"github.com/zintix-labs/seedlab/server/netsvr"
)

// Snapshot GET /v1/snapshot 目前狀態，不保存。
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap, err := h.lab().Snapshot()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Snapshots GET /v1/snapshots 已保存的快照清單。
func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// SaveSnapshot POST /v1/snapshot/{name}
func (h *Handler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	name := netsvr.URLParam(r, "name")
	h.mu.Lock()
	snap, err := h.lab().Snapshot()
	h.mu.Unlock()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store.Save(r.Context(), name, snap); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"name": name, "objects": len(snap.Objects)})
}

// LoadSnapshot GET /v1/snapshot/{name}
func (h *Handler) LoadSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context(), netsvr.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// RestoreSnapshot POST /v1/snapshot/{name}/restore 把已保存的串流位置寫回目前的物件。
func (h *Handler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context(), netsvr.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.mu.Lock()
	n, err := h.lab().RestoreStreams(snap)
	h.mu.Unlock()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"restored": n})
}

// DeleteSnapshot DELETE /v1/snapshot/{name}
func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Delete(r.Context(), netsvr.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
