package spec

import (
	"encoding/json"

	"github.com/zintix-labs/seedlab/errs"
	"gopkg.in/yaml.v3"
)

// GetScenarioByYAML
// 讀取 YAML 情境設定、套用預設值並執行檢查後回傳。
func GetScenarioByYAML(data []byte) (*Scenario, error) {
	sc := &Scenario{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, errs.Wrap(errs.Detail(errs.ErrBadConfig, "yaml"), err.Error())
	}
	if err := sc.init(); err != nil {
		return nil, errs.Wrap(err, "scenario initialized err")
	}
	return sc, nil
}

// GetScenarioByJSON
// 讀取 JSON 情境設定、套用預設值並執行檢查後回傳。
func GetScenarioByJSON(data []byte) (*Scenario, error) {
	sc := &Scenario{}
	if err := json.Unmarshal(data, sc); err != nil {
		return nil, errs.Wrap(errs.Detail(errs.ErrBadConfig, "json"), err.Error())
	}
	if err := sc.init(); err != nil {
		return nil, errs.Wrap(err, "scenario initialized err")
	}
	return sc, nil
}
