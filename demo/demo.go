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

// Package demo 載入內建示範情境，cmd/run 與 cmd/svr 未指定情境檔時使用。
package demo

import (
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/demo/demo_configs"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/spec"
)

// Names 內建情境名稱，已排序。
func Names() []string {
	entries, err := fs.ReadDir(demo_configs.FS, ".")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok && !e.IsDir() {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Scenario 以名稱讀取內建情境。
func Scenario(name string) (*spec.Scenario, error) {
	data, err := fs.ReadFile(demo_configs.FS, path.Clean(name)+".yaml")
	if err != nil {
		return nil, errs.Detail(errs.ErrBadConfig, "unknown demo %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return spec.GetScenarioByYAML(data)
}

// NewSimulator 以內建情境建立模擬器。
func NewSimulator(name string, opts ...seedlab.Option) (*seedlab.Simulator, error) {
	sc, err := Scenario(name)
	if err != nil {
		return nil, err
	}
	return seedlab.NewSimulator(sc, opts...)
}
