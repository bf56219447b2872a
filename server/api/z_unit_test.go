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

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/sdk/entropy"
	"github.com/zintix-labs/seedlab/server/netsvr"
	"github.com/zintix-labs/seedlab/server/svrcfg"
	"github.com/zintix-labs/seedlab/spec"
	"github.com/zintix-labs/seedlab/stats"
	"github.com/zintix-labs/seedlab/store/sqlite"
)

const scenarioYAML = `
name: api
global:
  kind: chacha8
  seed_u64: 7
groups:
  - name: players
    kind: pcg64
    count: 2
  - name: dice
    kind: wyrand
    count: 4
    source: players
draws: 4
`

type object struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Streams []struct {
		Kind        string `json:"kind"`
		Seed        string `json:"seed"`
		SeedVersion uint64 `json:"seed_version"`
	} `json:"streams"`
	Links []struct {
		Pair    string   `json:"pair"`
		Source  string   `json:"source"`
		Targets []string `json:"targets"`
	} `json:"links"`
}

func newServer(t *testing.T, withStore bool) (http.Handler, *seedlab.Simulator) {
	t.Helper()
	sc, err := spec.GetScenarioByYAML([]byte(scenarioYAML))
	require.NoError(t, err)
	sim, err := seedlab.NewSimulator(sc, seedlab.WithCache(entropy.NewCache(entropy.WithSlots(1))))
	require.NoError(t, err)

	cfg := &svrcfg.SvrCfg{Sim: sim, MaxWorkers: 4, MaxSteps: 100}
	if withStore {
		st, err := sqlite.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		cfg.Store = st
	}
	svr := netsvr.NewChiServerDefault()
	require.NoError(t, RegisterRoutes(svr, cfg))
	return svr, sim
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, &buf))
	return rr
}

func decodeAs[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func TestObjects(t *testing.T) {
	h, sim := newServer(t, false)

	rr := do(t, h, http.MethodGet, "/v1/objects", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	objs := decodeAs[[]object](t, rr)
	assert.Len(t, objs, 1+2+4)

	p0 := sim.Members("players")[0]
	rr = do(t, h, http.MethodGet, "/v1/objects/"+p0.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	obj := decodeAs[object](t, rr)
	assert.Equal(t, "players-0", obj.Name)
	var targets int
	for _, l := range obj.Links {
		if l.Pair == "pcg64->wyrand" {
			targets = len(l.Targets)
		}
	}
	assert.Equal(t, 2, targets)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/v1/objects/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/v1/objects/999v1", nil).Code)
}

func TestReseedLinked(t *testing.T) {
	h, sim := newServer(t, false)
	p0 := sim.Members("players")[0]
	d0 := sim.Members("dice")[0]

	before := decodeAs[object](t, do(t, h, http.MethodGet, "/v1/objects/"+d0.String(), nil))
	rr := do(t, h, http.MethodPost, "/v1/objects/"+p0.String()+"/reseed",
		map[string]string{"signal": "linked", "source": "pcg64", "target": "wyrand"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	after := decodeAs[object](t, do(t, h, http.MethodGet, "/v1/objects/"+d0.String(), nil))

	require.Len(t, after.Streams, 1)
	assert.Equal(t, before.Streams[0].SeedVersion+1, after.Streams[0].SeedVersion)
	assert.NotEqual(t, before.Streams[0].Seed, after.Streams[0].Seed)

	rr = do(t, h, http.MethodPost, "/v1/objects/"+p0.String()+"/reseed",
		map[string]string{"signal": "sideways", "source": "pcg64", "target": "wyrand"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, http.MethodPost, "/v1/objects/"+p0.String()+"/reseed",
		map[string]string{"source": "mt19937", "target": "wyrand"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStep(t *testing.T) {
	h, _ := newServer(t, false)

	rr := do(t, h, http.MethodPost, "/v1/step", map[string]int{"steps": 3, "workers": 2})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeAs[struct {
		Report *stats.Report `json:"report"`
	}](t, rr)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 3, resp.Report.Steps)
	require.Len(t, resp.Report.Groups, 2)
	assert.Equal(t, uint64(3*4*4), resp.Report.Groups[1].Draws)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/step", map[string]int{"workers": 99}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/step", map[string]int{"steps": -1}).Code)
}

func TestSnapshotRoutes(t *testing.T) {
	h, _ := newServer(t, true)

	rr := do(t, h, http.MethodGet, "/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	live := decodeAs[seedlab.Snapshot](t, rr)
	assert.Len(t, live.Objects, 7)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/snapshot/s1", nil).Code)
	rr = do(t, h, http.MethodGet, "/v1/snapshots", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeAs[[]sqlite.Entry](t, rr), 1)

	// 推進後還原，串流回到保存時的位置
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/v1/step", map[string]int{"steps": 2}).Code)
	rr = do(t, h, http.MethodPost, "/v1/snapshot/s1/restore", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 7, decodeAs[map[string]int](t, rr)["restored"])

	rr = do(t, h, http.MethodGet, "/v1/snapshot", nil)
	again := decodeAs[seedlab.Snapshot](t, rr)
	assert.Equal(t, live, again)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/v1/snapshot/s1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/v1/snapshot/s1", nil).Code)
}

func TestSnapshotRoutesNeedStore(t *testing.T) {
	h, _ := newServer(t, false)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/v1/snapshots", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", nil).Code)
}
