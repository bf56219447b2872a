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

package stats_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/sampler"
	"github.com/zintix-labs/seedlab/stats"
)

func accFrom(src core.Source, n int) *stats.Accumulator {
	a := &stats.Accumulator{}
	for i := 0; i < n; i++ {
		a.Add(src.Uint64())
	}
	return a
}

func TestStreamReportUniform(t *testing.T) {
	accs := make([]*stats.Accumulator, 8)
	for i := range accs {
		accs[i] = accFrom(core.NewWyRand(uint64(i+1)), 4000)
	}
	r := stats.NewStreamReport("players", "wyrand", accs)
	if r.Draws != 32000 || r.Objects != 8 {
		t.Fatalf("unexpected totals: %+v", r)
	}
	if r.Mean < 0.48 || r.Mean > 0.52 {
		t.Fatalf("mean out of range: %v", r.Mean)
	}
	if r.MeanCI.Lo >= r.Mean || r.MeanCI.Hi <= r.Mean {
		t.Fatalf("mean must lie inside its CI")
	}
	if r.FirstDup != 0 {
		t.Fatalf("unexpected first-draw duplicates")
	}
	if r.PValue <= 0 || r.PValue > 1 {
		t.Fatalf("p-value out of range: %v", r.PValue)
	}
	if r.ObjMeanStd <= 0 {
		t.Fatalf("object mean spread should be positive")
	}
}

type constSource struct{ v uint64 }

func (c constSource) Uint32() uint32     { return uint32(c.v) }
func (c constSource) Uint64() uint64     { return c.v }
func (c constSource) FillBytes(p []byte) { core.FillFromUint64(p, c.Uint64) }

func TestStreamReportDetectsBrokenStream(t *testing.T) {
	accs := []*stats.Accumulator{
		accFrom(constSource{v: 1 << 63}, 2000),
		accFrom(constSource{v: 1 << 63}, 2000),
	}
	r := stats.NewStreamReport("broken", "const", accs)
	if r.Uniform {
		t.Fatalf("constant stream must not pass")
	}
	if r.FirstDup != 1 {
		t.Fatalf("expected one duplicate first draw, got %d", r.FirstDup)
	}
	if r.PValue > stats.PassLevel {
		t.Fatalf("expected tiny p-value, got %v", r.PValue)
	}
}

func TestFitOutcomes(t *testing.T) {
	weights := []int{10, 0, 30, 60}
	at := sampler.MustAliasTable(weights)
	accs := make([]*stats.Accumulator, 4)
	for i := range accs {
		src := core.NewWyRand(uint64(100 + i))
		c := core.New(src)
		a := &stats.Accumulator{}
		for j := 0; j < 5000; j++ {
			a.Add(src.Uint64())
			a.AddOutcome(at.Pick(c))
		}
		accs[i] = a
	}
	r := stats.NewStreamReport("loot", "wyrand", accs)
	r.FitOutcomes(weights)
	if len(r.Outcomes) != 4 || r.Outcomes[1] != 0 {
		t.Fatalf("outcomes = %v", r.Outcomes)
	}
	if r.OutcomePValue < stats.PassLevel || !r.Uniform {
		t.Fatalf("fair sampling should pass, p = %v", r.OutcomePValue)
	}

	// 權重與實際分布不符
	r = stats.NewStreamReport("loot", "wyrand", accs)
	r.FitOutcomes([]int{60, 0, 30, 10})
	if r.Uniform {
		t.Fatalf("mismatched weights must fail")
	}

	// 零權重的結果出現過
	bad := &stats.Accumulator{}
	bad.Add(1)
	bad.AddOutcome(1)
	r = stats.NewStreamReport("bad", "const", []*stats.Accumulator{bad})
	r.FitOutcomes([]int{1, 0})
	if r.OutcomePValue != 0 || r.Uniform {
		t.Fatalf("impossible outcome must fail: %+v", r)
	}
}

func TestEmptyReport(t *testing.T) {
	r := stats.NewStreamReport("none", "wyrand", nil)
	if r.Draws != 0 || r.Mean != 0 {
		t.Fatalf("empty report should be zero")
	}
}

func TestRenderers(t *testing.T) {
	rep := &stats.Report{
		Scenario: "demo",
		Steps:    3,
		Workers:  2,
		Groups:   []*stats.StreamReport{stats.NewStreamReport("g", "wyrand", []*stats.Accumulator{accFrom(core.NewWyRand(5), 100)})},
	}

	var jb bytes.Buffer
	if err := rep.WriteWith(&jb, &stats.JsonReportRender{}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back stats.Report
	if err := json.Unmarshal(jb.Bytes(), &back); err != nil || back.Groups[0].Draws != 100 {
		t.Fatalf("json decode: %v", err)
	}

	var yb bytes.Buffer
	if err := rep.WriteWith(&yb, &stats.YAMLReportRender{}); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(yb.String(), "counts: [") {
		t.Fatalf("counts should be flow style:\n%s", yb.String())
	}

	var tb bytes.Buffer
	if err := rep.WriteWith(&tb, &stats.TableReportRender{}); err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(tb.String(), "| Kind") || !strings.Contains(tb.String(), "demo") {
		t.Fatalf("unexpected table:\n%s", tb.String())
	}
}
