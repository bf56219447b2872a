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

// svr 啟動檢視伺服器。設定先讀 SEEDLAB_* 環境變數，再由旗標覆寫。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/seedlab/server"
	"github.com/zintix-labs/seedlab/server/netsvr"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

func main() {
	env, err := svrcfg.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	bindFlags(&env)

	sCfg, closer, err := svrcfg.Build(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer()

	svr := netsvr.NewChiServer(env.Addr, netsvr.Timeouts{Read: env.ReadTimeout, Write: env.WriteTimeout})
	if err := server.RunWithSvr(context.Background(), sCfg, svr); err != nil {
		os.Exit(1)
	}
}

// bindFlags 旗標預設值取自環境變數，未指定的旗標不會覆寫。
func bindFlags(e *svrcfg.Env) {
	flag.StringVar(&e.Addr, "addr", e.Addr, "listen address")
	flag.StringVar(&e.LogMode, "log-mode", e.LogMode, "log mode: dev, prod, silence")
	flag.StringVar(&e.Scenario, "demo", e.Scenario, "built-in scenario name")
	flag.StringVar(&e.ScenarioFile, "scenario", e.ScenarioFile, "scenario file (.yaml/.json), overrides -demo")
	flag.StringVar(&e.DBPath, "db", e.DBPath, "sqlite file for saved snapshots (empty: disabled)")
	flag.IntVar(&e.MaxWorkers, "max-workers", e.MaxWorkers, "max workers per step request")
	flag.IntVar(&e.MaxSteps, "max-steps", e.MaxSteps, "max steps per step request")
	flag.Parse()
}
