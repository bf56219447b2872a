package spec

import (
	"encoding/hex"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/sampler"
)

// GlobalSource 代表全域來源的情境名稱，可作為 Group.Source。
const GlobalSource = "global"

// Scenario 一次模擬所需的全部設定。
type Scenario struct {
	Name        string       `yaml:"name"         json:"name"`
	Global      GlobalConfig `yaml:"global"       json:"global"`
	Groups      []Group      `yaml:"groups"       json:"groups"`
	Steps       int          `yaml:"steps"        json:"steps"`
	Draws       int          `yaml:"draws"        json:"draws"`
	ReseedEvery int          `yaml:"reseed_every" json:"reseed_every"`
	// CascadeDespawn 移除 source 時一併移除其 targets。
	CascadeDespawn bool `yaml:"cascade_despawn" json:"cascade_despawn"`
}

// GlobalConfig 全域來源。Seed（hex）優先，其次 SeedU64；兩者皆空時使用 OS entropy。
type GlobalConfig struct {
	Kind    string  `yaml:"kind"     json:"kind"`
	Seed    string  `yaml:"seed"     json:"seed"`
	SeedU64 *uint64 `yaml:"seed_u64" json:"seed_u64"`
}

// Group 一組同演算法的物件。
//
// Source 為 "global" 時，物件直接連到全域來源；
// 為其他群組名稱時，物件依序輪流分配給該群組的成員。來源群組必須定義在前面。
//
// Weights 非空時，每次抽取另外以 alias table 抽一個結果索引，報表附上結果分布與權重的卡方檢定。
type Group struct {
	Name    string `yaml:"name"              json:"name"`
	Kind    string `yaml:"kind"              json:"kind"`
	Count   int    `yaml:"count"             json:"count"`
	Source  string `yaml:"source"            json:"source"`
	Weights []int  `yaml:"weights,omitempty" json:"weights,omitempty"`
}

// SourceName 來源群組名稱，空字串視為 GlobalSource。
func (g Group) SourceName() string {
	if g.Source == "" {
		return GlobalSource
	}
	return g.Source
}

// HasSeed 是否指定了固定根 seed。
func (g GlobalConfig) HasSeed() bool {
	return g.Seed != "" || g.SeedU64 != nil
}

func (sc *Scenario) init() error {
	if sc.Global.Kind == "" {
		sc.Global.Kind = "chacha8"
	}
	if sc.Steps == 0 {
		sc.Steps = 1
	}
	if sc.Draws == 0 {
		sc.Draws = 1
	}
	for i := range sc.Groups {
		if sc.Groups[i].Source == "" {
			sc.Groups[i].Source = GlobalSource
		}
	}
	return sc.valid()
}

// Validate 檢查情境結構。演算法名稱由使用端的 registry 檢查。
// 未填 Source 的群組視為連到全域來源。
func (sc *Scenario) Validate() error {
	if sc == nil {
		return errs.Detail(errs.ErrBadConfig, "nil scenario")
	}
	return sc.valid()
}

func (sc *Scenario) valid() error {
	if sc.Name == "" {
		return errs.Detail(errs.ErrBadConfig, "empty name")
	}
	if sc.Global.Seed != "" {
		if _, err := hex.DecodeString(sc.Global.Seed); err != nil {
			return errs.Detail(errs.ErrBadConfig, "%s: global seed is not hex", sc.Name)
		}
	}
	if len(sc.Groups) == 0 {
		return errs.Detail(errs.ErrBadConfig, "%s: empty groups", sc.Name)
	}
	if sc.Steps < 0 || sc.Draws < 0 || sc.ReseedEvery < 0 {
		return errs.Detail(errs.ErrBadConfig, "%s: steps, draws and reseed_every must be >= 0", sc.Name)
	}

	seen := map[string]bool{GlobalSource: true}
	for _, g := range sc.Groups {
		if g.Name == "" || g.Name == GlobalSource {
			return errs.Detail(errs.ErrBadConfig, "%s: invalid group name %q", sc.Name, g.Name)
		}
		if seen[g.Name] {
			return errs.Detail(errs.ErrBadConfig, "%s: duplicate group %q", sc.Name, g.Name)
		}
		if g.Count < 1 {
			return errs.Detail(errs.ErrBadConfig, "%s: group %q count must > 0", sc.Name, g.Name)
		}
		if g.Kind == "" {
			return errs.Detail(errs.ErrBadConfig, "%s: group %q has no kind", sc.Name, g.Name)
		}
		if len(g.Weights) > 0 {
			if _, err := sampler.NewAliasTable(g.Weights); err != nil {
				return errs.Wrap(errs.Detail(errs.ErrBadConfig, "%s: group %q weights", sc.Name, g.Name), err.Error())
			}
		}
		if !seen[g.SourceName()] {
			return errs.Detail(errs.ErrBadConfig, "%s: group %q source %q must be defined before it", sc.Name, g.Name, g.Source)
		}
		seen[g.Name] = true
	}
	return nil
}

// Lookup 依名稱查找群組。
func (sc *Scenario) Lookup(name string) (Group, bool) {
	for _, g := range sc.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}
