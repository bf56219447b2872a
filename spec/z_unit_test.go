package spec

import (
	"errors"
	"testing"

	"github.com/zintix-labs/seedlab/errs"
)

const sampleYAML = `
name: turn_based
global:
  kind: chacha8
  seed_u64: 42
groups:
  - name: players
    kind: wyrand
    count: 4
  - name: enemies
    kind: pcg32
    count: 8
    source: players
steps: 10
draws: 2
reseed_every: 5
`

func TestGetScenarioByYAML(t *testing.T) {
	sc, err := GetScenarioByYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc.Groups[0].Source != GlobalSource {
		t.Fatalf("default source should be global, got %q", sc.Groups[0].Source)
	}
	if !sc.Global.HasSeed() || *sc.Global.SeedU64 != 42 {
		t.Fatalf("seed_u64 not parsed")
	}
	g, ok := sc.Lookup("enemies")
	if !ok || g.Source != "players" || g.Count != 8 {
		t.Fatalf("unexpected group: %+v", g)
	}
}

func TestGetScenarioByJSONDefaults(t *testing.T) {
	sc, err := GetScenarioByJSON([]byte(`{"name":"x","groups":[{"name":"a","kind":"wyrand","count":1}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc.Global.Kind != "chacha8" || sc.Steps != 1 || sc.Draws != 1 {
		t.Fatalf("defaults not applied: %+v", sc)
	}
	if sc.Global.HasSeed() {
		t.Fatalf("no seed configured")
	}
}

func TestScenarioValidation(t *testing.T) {
	cases := map[string]string{
		"no name":        `{"groups":[{"name":"a","kind":"wyrand","count":1}]}`,
		"no groups":      `{"name":"x"}`,
		"bad count":      `{"name":"x","groups":[{"name":"a","kind":"wyrand","count":0}]}`,
		"forward source": `{"name":"x","groups":[{"name":"a","kind":"wyrand","count":1,"source":"b"},{"name":"b","kind":"wyrand","count":1}]}`,
		"self source":    `{"name":"x","groups":[{"name":"a","kind":"wyrand","count":1,"source":"a"}]}`,
		"duplicate":      `{"name":"x","groups":[{"name":"a","kind":"wyrand","count":1},{"name":"a","kind":"wyrand","count":1}]}`,
		"reserved name":  `{"name":"x","groups":[{"name":"global","kind":"wyrand","count":1}]}`,
		"bad hex":        `{"name":"x","global":{"seed":"xyz"},"groups":[{"name":"a","kind":"wyrand","count":1}]}`,
		"zero weights":   `{"name":"x","groups":[{"name":"a","kind":"wyrand","count":1,"weights":[0,0]}]}`,
		"negative":       `{"name":"x","groups":[{"name":"a","kind":"wyrand","count":1,"weights":[3,-1]}]}`,
	}
	for name, data := range cases {
		_, err := GetScenarioByJSON([]byte(data))
		if !errors.Is(err, errs.ErrBadConfig) {
			t.Fatalf("%s: expected ErrBadConfig, got %v", name, err)
		}
	}
	sc, err := GetScenarioByJSON([]byte(`{"name":"x","groups":[{"name":"a","kind":"wyrand","count":1,"weights":[1,0,3]}]}`))
	if err != nil || len(sc.Groups[0].Weights) != 3 {
		t.Fatalf("weights: %v", err)
	}
	if _, err := GetScenarioByYAML([]byte("name: [")); !errors.Is(err, errs.ErrBadConfig) {
		t.Fatalf("broken yaml should be ErrBadConfig, got %v", err)
	}
}

func TestValidateHandBuilt(t *testing.T) {
	var nilSc *Scenario
	if err := nilSc.Validate(); !errors.Is(err, errs.ErrBadConfig) {
		t.Fatalf("nil scenario should be ErrBadConfig, got %v", err)
	}
	sc := &Scenario{Name: "x", Groups: []Group{
		{Name: "a", Kind: "wyrand", Count: 1},
		{Name: "b", Kind: "wyrand", Count: 1, Source: "a"},
	}}
	if err := sc.Validate(); err != nil {
		t.Fatalf("empty source should mean global: %v", err)
	}
	sc.Groups[1].Source = "nope"
	if err := sc.Validate(); !errors.Is(err, errs.ErrBadConfig) {
		t.Fatalf("unknown source should be ErrBadConfig, got %v", err)
	}
}
