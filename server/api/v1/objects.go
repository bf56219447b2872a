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
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/link"
	"github.com/zintix-labs/seedlab/sdk/world"
	"github.com/zintix-labs/seedlab/server/netsvr"
)

type streamView struct {
	Kind        string `json:"kind"`
	Seed        string `json:"seed,omitempty"`
	SeedVersion uint64 `json:"seed_version"`
	HasEntropy  bool   `json:"has_entropy"`
}

type linkView struct {
	Pair    string   `json:"pair"`
	Source  string   `json:"source,omitempty"`
	Targets []string `json:"targets,omitempty"`
}

type objectView struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Streams []streamView `json:"streams"`
	Links   []linkView   `json:"links,omitempty"`
}

func (h *Handler) view(id world.ID) objectView {
	l := h.lab()
	w := l.World()
	v := objectView{ID: id.String(), Name: w.Name(id), Streams: []streamView{}}
	for _, k := range w.Kinds(id) {
		sv := streamView{Kind: k.Name(), SeedVersion: w.SeedVersion(id, k)}
		if s, ok := w.Seed(id, k); ok {
			sv.Seed = hex.EncodeToString(s.Bytes())
		}
		_, sv.HasEntropy = w.Entropy(id, k)
		v.Streams = append(v.Streams, sv)
	}
	g := l.Graph()
	for _, p := range g.Pairs() {
		lv := linkView{Pair: p.String()}
		if src, ok := g.SourceOf(p, id); ok {
			lv.Source = src.String()
		}
		for _, t := range g.TargetsOf(p, id) {
			lv.Targets = append(lv.Targets, t.String())
		}
		if lv.Source != "" || len(lv.Targets) > 0 {
			v.Links = append(v.Links, lv)
		}
	}
	return v
}

// objectID 解析路徑上的 {id}，物件必須存活。
func (h *Handler) objectID(r *http.Request) (world.ID, error) {
	raw := netsvr.URLParam(r, "id")
	id, ok := world.ParseID(raw)
	if !ok {
		return world.Nil, errs.Warnf("invalid object id %q", raw)
	}
	if !h.lab().World().Alive(id) {
		return world.Nil, errs.Detail(errs.ErrNoObject, "%s", id)
	}
	return id, nil
}

// Objects GET /v1/objects
func (h *Handler) Objects(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := h.lab().World().Objects()
	out := make([]objectView, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.view(id))
	}
	writeJSON(w, http.StatusOK, out)
}

// Object GET /v1/objects/{id}
func (h *Handler) Object(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, err := h.objectID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(id))
}

type reseedRequest struct {
	Signal string `json:"signal"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Reseed POST /v1/objects/{id}/reseed
//
// signal 為 linked 時 {id} 是 source，其餘時 {id} 是 target。
// 缺少連結或全域來源時訊號會被靜默丟棄，回應中的 seed_version 不變。
func (h *Handler) Reseed(w http.ResponseWriter, r *http.Request) {
	req := reseedRequest{}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	id, err := h.objectID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sig, err := h.signal(id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	l := h.lab()
	l.Send(sig)
	if err := l.Flush(); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(id))
}

func (h *Handler) signal(id world.ID, req reseedRequest) (seedlab.Signal, error) {
	reg := h.lab().Registry()
	src, err := reg.Lookup(req.Source)
	if err != nil {
		return nil, err
	}
	tgt, err := reg.Lookup(req.Target)
	if err != nil {
		return nil, err
	}
	p := link.Pair{Source: src, Target: tgt}
	switch strings.ToLower(req.Signal) {
	case "linked", "":
		return seedlab.SeedLinked{Source: id, Pair: p}, nil
	case "source":
		return seedlab.SeedFromSource{Target: id, Pair: p}, nil
	case "global":
		return seedlab.SeedFromGlobal{Target: id, Pair: p}, nil
	default:
		return nil, errs.Warnf("unknown signal %q", req.Signal)
	}
}
