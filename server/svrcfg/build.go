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

package svrcfg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/demo"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/server/logger"
	"github.com/zintix-labs/seedlab/spec"
	"github.com/zintix-labs/seedlab/store/sqlite"
)

// Build 依 Env 建立 logger、模擬器與（可選的）快照儲存。
// 回傳的 closer 關閉儲存並送出剩餘 log，必須呼叫。
func Build(e Env) (*SvrCfg, func(), error) {
	mode, err := logger.ParseMode(e.LogMode)
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(e.LogBuf, mode)
	closers := []func(){ah.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	sc, err := scenario(e)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	sim, err := seedlab.NewSimulator(sc, seedlab.WithLogger(log))
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	var st *sqlite.Store
	if e.DBPath != "" {
		if st, err = sqlite.Open(e.DBPath); err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = st.Close() })
	}

	sCfg := &SvrCfg{
		Log:        log,
		Sim:        sim,
		Store:      st,
		MaxWorkers: e.MaxWorkers,
		MaxSteps:   e.MaxSteps,
	}
	if err := sCfg.Valid(); err != nil {
		closeAll()
		return nil, nil, err
	}
	return sCfg, closeAll, nil
}

func scenario(e Env) (*spec.Scenario, error) {
	if e.ScenarioFile == "" {
		return demo.Scenario(e.Scenario)
	}
	data, err := os.ReadFile(filepath.Clean(e.ScenarioFile))
	if err != nil {
		return nil, errs.Wrap(err, "read scenario")
	}
	if strings.EqualFold(filepath.Ext(e.ScenarioFile), ".json") {
		return spec.GetScenarioByJSON(data)
	}
	return spec.GetScenarioByYAML(data)
}
