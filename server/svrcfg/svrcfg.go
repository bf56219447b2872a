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

// Package svrcfg 伺服器設定。欄位可由環境變數（SEEDLAB_ 前綴）填入，再由命令列旗標覆寫。
package svrcfg

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/server/logger"
	"github.com/zintix-labs/seedlab/store/sqlite"
)

// Env 由環境變數讀入的設定。
type Env struct {
	Addr         string        `env:"ADDR" envDefault:":5808"`
	LogMode      string        `env:"LOG_MODE" envDefault:"dev"`
	LogBuf       int           `env:"LOG_BUF" envDefault:"8192"`
	Scenario     string        `env:"SCENARIO" envDefault:"turn_based"`
	ScenarioFile string        `env:"SCENARIO_FILE"`
	DBPath       string        `env:"DB_PATH"`
	MaxWorkers   int           `env:"MAX_WORKERS" envDefault:"8"`
	MaxSteps     int           `env:"MAX_STEPS" envDefault:"10000"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
}

// LoadEnv 讀取 SEEDLAB_* 環境變數。
func LoadEnv() (Env, error) {
	return LoadEnvFrom(nil)
}

// LoadEnvFrom 以給定的變數表取代行程環境，nil 表示使用行程環境。
func LoadEnvFrom(vars map[string]string) (Env, error) {
	opts := env.Options{Prefix: "SEEDLAB_"}
	if vars != nil {
		opts.Environment = vars
	}
	cfg, err := env.ParseAsWithOptions[Env](opts)
	if err != nil {
		return Env{}, errs.Wrap(errs.Detail(errs.ErrBadConfig, "env"), err.Error())
	}
	return cfg, nil
}

// SvrCfg 組裝好的執行期依賴。
type SvrCfg struct {
	Log        *slog.Logger
	Sim        *seedlab.Simulator
	Store      *sqlite.Store
	MaxWorkers int
	MaxSteps   int
}

// Valid 補上預設值並檢查必要依賴。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("async log handler is not ready")
		}
	} else {
		sc.Log = logger.Silent()
	}
	if sc.Sim == nil {
		return errs.NewFatal("simulator is required")
	}
	sc.MaxWorkers = min(max(1, sc.MaxWorkers), 256)
	sc.MaxSteps = max(1, sc.MaxSteps)
	return nil
}
