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

// Package stats 對亂數串流做基本品質檢查並輸出報表。
//
// 檢查項目都是「便宜且足以抓出明顯錯誤」的等級：
// 高 4 位元分桶的卡方均勻度、[0,1) 平均值、位元平衡（monobit），
// 以及同群組內各物件首個輸出是否重複。
package stats

import (
	"fmt"
	"io"
	"math"
	"math/bits"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// Bins 卡方檢定的分桶數（取輸出最高 4 位元）。
const Bins = 16

// PassLevel 卡方 p 值低於此門檻視為不均勻。
const PassLevel = 0.001

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// Accumulator 單一串流的累計值。同一時間只能由一個 goroutine 寫入。
type Accumulator struct {
	Counts   [Bins]uint64
	N        uint64
	Sum      float64
	SumSq    float64
	Ones     uint64
	First    uint64
	HasFirst bool
	// Outcomes 加權抽樣結果的次數，索引為結果編號。
	Outcomes []uint64
}

// Add 記錄一個 64-bit 輸出。
func (a *Accumulator) Add(v uint64) {
	if !a.HasFirst {
		a.First = v
		a.HasFirst = true
	}
	a.Counts[v>>60]++
	u := float64(v>>11) / (1 << 53)
	a.Sum += u
	a.SumSq += u * u
	a.Ones += uint64(bits.OnesCount64(v))
	a.N++
}

// AddOutcome 記錄一次加權抽樣的結果索引。
func (a *Accumulator) AddOutcome(i int) {
	if i < 0 {
		return
	}
	if i >= len(a.Outcomes) {
		a.Outcomes = append(a.Outcomes, make([]uint64, i+1-len(a.Outcomes))...)
	}
	a.Outcomes[i]++
}

// Merge 併入另一個累計值（First 保留原本的）。
func (a *Accumulator) Merge(o *Accumulator) {
	for i := range a.Counts {
		a.Counts[i] += o.Counts[i]
	}
	a.N += o.N
	a.Sum += o.Sum
	a.SumSq += o.SumSq
	a.Ones += o.Ones
	if !a.HasFirst && o.HasFirst {
		a.First, a.HasFirst = o.First, true
	}
	if len(o.Outcomes) > len(a.Outcomes) {
		a.Outcomes = append(a.Outcomes, make([]uint64, len(o.Outcomes)-len(a.Outcomes))...)
	}
	for i, c := range o.Outcomes {
		a.Outcomes[i] += c
	}
}

// Mean [0,1) 平均值，理想值 0.5。
func (a *Accumulator) Mean() float64 {
	if a.N == 0 {
		return 0
	}
	return a.Sum / float64(a.N)
}

// StreamReport 一個群組的串流品質報告。
type StreamReport struct {
	Name       string   `json:"Name"`
	Kind       string   `json:"Kind"`
	Objects    int      `json:"Objects"`
	Draws      uint64   `json:"Draws"`
	Mean       float64  `json:"Mean"`
	MeanCI     CI       `json:"MeanCI"`
	Std        float64  `json:"Std"`
	ObjMeanStd float64  `json:"ObjMeanStd"`
	ChiSquare  float64  `json:"ChiSquare"`
	DoF        int      `json:"DoF"`
	PValue     float64  `json:"PValue"`
	MonobitZ   float64  `json:"MonobitZ"`
	FirstDup   int      `json:"FirstDup"`
	Counts     []uint64 `json:"Counts"`
	Uniform    bool     `json:"Uniform"`

	Outcomes      []uint64 `json:"Outcomes,omitempty"`
	OutcomeChi    float64  `json:"OutcomeChi,omitempty"`
	OutcomePValue float64  `json:"OutcomePValue,omitempty"`
}

// NewStreamReport 合併同群組各物件的累計值並計算統計量。
func NewStreamReport(name, kind string, accs []*Accumulator) *StreamReport {
	r := &StreamReport{Name: name, Kind: kind, Objects: len(accs), DoF: Bins - 1}
	total := &Accumulator{}
	means := make([]float64, 0, len(accs))
	firsts := make(map[uint64]struct{}, len(accs))
	for _, a := range accs {
		total.Merge(a)
		if a.N > 0 {
			means = append(means, a.Mean())
		}
		if a.HasFirst {
			if _, dup := firsts[a.First]; dup {
				r.FirstDup++
			}
			firsts[a.First] = struct{}{}
		}
	}
	r.Draws = total.N
	r.Counts = append([]uint64(nil), total.Counts[:]...)
	r.Outcomes = total.Outcomes
	if total.N == 0 {
		return r
	}
	n := float64(total.N)
	r.Mean = total.Mean()
	r.Std = math.Sqrt(math.Max(total.SumSq/n-r.Mean*r.Mean, 0))
	se := r.Std / math.Sqrt(n)
	r.MeanCI = CI{Lo: r.Mean - 1.96*se, Hi: r.Mean + 1.96*se}
	if len(means) > 1 {
		_, r.ObjMeanStd = stat.MeanStdDev(means, nil)
	}

	exp := n / Bins
	for _, c := range total.Counts {
		d := float64(c) - exp
		r.ChiSquare += d * d / exp
	}
	r.PValue = distuv.ChiSquared{K: float64(r.DoF)}.Survival(r.ChiSquare)

	// 每個輸出 64 位元，期望一半為 1
	bitsN := 64 * n
	r.MonobitZ = (float64(total.Ones) - bitsN/2) / math.Sqrt(bitsN/4)
	r.Uniform = r.PValue >= PassLevel && r.FirstDup == 0
	return r
}

// FitOutcomes 以權重為期望分布，對 Outcomes 做卡方適合度檢定並更新 Uniform。
// 權重為 0 的結果只要出現過就判定失敗。
func (r *StreamReport) FitOutcomes(weights []int) {
	if len(weights) == 0 {
		return
	}
	var n, total float64
	for _, c := range r.Outcomes {
		n += float64(c)
	}
	// 超出權重表的索引不可能出現
	impossible := len(r.Outcomes) > len(weights)
	counts := make([]uint64, len(weights))
	copy(counts, r.Outcomes)
	for _, w := range weights {
		total += float64(w)
	}
	r.Outcomes = counts
	if n == 0 || total == 0 {
		return
	}

	dof := -1
	r.OutcomeChi = 0
	for i, w := range weights {
		if w == 0 {
			impossible = impossible || counts[i] > 0
			continue
		}
		exp := n * float64(w) / total
		d := float64(counts[i]) - exp
		r.OutcomeChi += d * d / exp
		dof++
	}
	switch {
	case impossible:
		r.OutcomePValue = 0
	case dof < 1:
		r.OutcomePValue = 1
	default:
		r.OutcomePValue = distuv.ChiSquared{K: float64(dof)}.Survival(r.OutcomeChi)
	}
	r.Uniform = r.Uniform && r.OutcomePValue >= PassLevel
}

// Report 一次模擬的完整報表。
type Report struct {
	Scenario string          `json:"Scenario"`
	Steps    int             `json:"Steps"`
	Workers  int             `json:"Workers"`
	Reseeds  int             `json:"Reseeds"`
	Commands uint64          `json:"Commands"`
	Groups   []*StreamReport `json:"Groups"`
}

// Draws 所有群組的總抽取數。
func (r *Report) Draws() uint64 {
	var n uint64
	for _, g := range r.Groups {
		n += g.Draws
	}
	return n
}

func (r *Report) WriteWith(w io.Writer, rep ReportRender) error {
	return rep.Write(w, r)
}

// StdOut 以表格輸出到標準輸出。
func (r *Report) StdOut(ut time.Duration) {
	fmt.Print(r.Table())
	formatDuration(ut, r.Draws())
}

// Table 完整表格字串。
func (r *Report) Table() string {
	p := message.NewPrinter(lang)
	head := map[string]string{
		"Scenario": r.Scenario,
		"Steps":    p.Sprintf("%d", r.Steps),
		"Workers":  p.Sprintf("%d", r.Workers),
		"Reseeds":  p.Sprintf("%d", r.Reseeds),
		"Commands": p.Sprintf("%d", r.Commands),
		"Draws":    p.Sprintf("%d", r.Draws()),
	}
	out := fmtTable("seedlab", []string{"Scenario", "Steps", "Workers", "Reseeds", "Commands", "Draws"}, head)
	for _, g := range r.Groups {
		k, m := g.fmtBasic()
		out += fmtTable(g.Name, k, m)
	}
	return out
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (g *StreamReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	verdict := "ok"
	if !g.Uniform {
		verdict = "SUSPECT"
	}
	m := map[string]string{
		"Kind":         g.Kind,
		"Objects":      p.Sprintf("%d", g.Objects),
		"Draws":        p.Sprintf("%d", g.Draws),
		"Mean":         p.Sprintf("%.5f", g.Mean),
		"Mean 95% CI":  p.Sprintf("[%.5f,%.5f]", g.MeanCI.Lo, g.MeanCI.Hi),
		"STD":          p.Sprintf("%.5f", g.Std),
		"Obj Mean STD": p.Sprintf("%.5f", g.ObjMeanStd),
		"Chi-Square":   p.Sprintf("%.3f (dof %d)", g.ChiSquare, g.DoF),
		"P-Value":      p.Sprintf("%.4f", g.PValue),
		"Monobit Z":    p.Sprintf("%.3f", g.MonobitZ),
		"First Dup":    p.Sprintf("%d", g.FirstDup),
		"Verdict":      verdict,
	}
	keys := []string{"Kind", "Objects", "Draws", "Mean", "Mean 95% CI", "STD", "Obj Mean STD", "Chi-Square", "P-Value", "Monobit Z", "First Dup"}
	if len(g.Outcomes) > 0 {
		m["Outcome Chi"] = p.Sprintf("%.3f (k %d)", g.OutcomeChi, len(g.Outcomes))
		m["Outcome P"] = p.Sprintf("%.4f", g.OutcomePValue)
		keys = append(keys, "Outcome Chi", "Outcome P")
	}
	return append(keys, "Verdict"), m
}

func formatDuration(d time.Duration, draws uint64) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(draws) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ndps : %d draws/sec\n", sec, dps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\ndps : %d draws/sec\n", m, s, dps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ndps : %d draws/sec\n", h, m, s, dps)
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2
	totalInner := maxKeyLen + maxValLen + 1
	if tw := runewidth.StringWidth(title) + 2; tw > totalInner {
		maxValLen += tw - totalInner
		totalInner = tw
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	titleW := runewidth.StringWidth(title)
	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
