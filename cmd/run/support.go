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

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/demo"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/server/logger"
	"github.com/zintix-labs/seedlab/spec"
	"github.com/zintix-labs/seedlab/stats"
	"github.com/zintix-labs/seedlab/store/sqlite"
)

type config struct {
	scenario  string
	demoName  string
	workers   int
	steps     int
	draws     int
	seed      string
	seedU64   int64
	showpb    bool
	out       string
	logMode   string
	db        string
	snapshot  string
	pprofmode string
}

func bindVar() *config {
	cfg := &config{}
	flag.StringVar(&cfg.scenario, "scenario", "", "scenario file (.yaml/.yml/.json)")
	flag.StringVar(&cfg.demoName, "demo", "turn_based", "built-in scenario: "+strings.Join(demo.Names(), ", "))
	flag.IntVar(&cfg.workers, "workers", 1, "number of workers")
	flag.IntVar(&cfg.steps, "steps", 0, "override scenario steps")
	flag.IntVar(&cfg.draws, "draws", 0, "override draws per object per step")
	flag.StringVar(&cfg.seed, "seed", "", "override root seed (hex)")
	flag.Int64Var(&cfg.seedU64, "seed-u64", -1, "override root seed, expanded from a uint64")
	flag.BoolVar(&cfg.showpb, "pb", false, "show progress bar")
	flag.StringVar(&cfg.out, "out", "table", "output: table, json, yaml")
	flag.StringVar(&cfg.logMode, "log", "silence", "log mode: dev, prod, silence")
	flag.StringVar(&cfg.db, "db", "", "sqlite file for root seeds and snapshots")
	flag.StringVar(&cfg.snapshot, "snapshot", "", "save the final snapshot under this name (needs -db)")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs, mutex, block")
	flag.Parse()
	return cfg
}

func (cfg *config) valid() error {
	if cfg.workers < 1 {
		return errs.NewWarn("workers must > 0")
	}
	if cfg.steps < 0 || cfg.draws < 0 {
		return errs.NewWarn("steps and draws must >= 0")
	}
	switch cfg.out {
	case "table", "json", "yaml":
	default:
		return errs.Warnf("unknown output %q", cfg.out)
	}
	if cfg.snapshot != "" && cfg.db == "" {
		return errs.NewWarn("-snapshot needs -db")
	}
	return nil
}

func loadScenario(cfg *config) (*spec.Scenario, error) {
	if cfg.scenario == "" {
		return demo.Scenario(cfg.demoName)
	}
	data, err := os.ReadFile(filepath.Clean(cfg.scenario))
	if err != nil {
		return nil, errs.Wrap(err, "read scenario")
	}
	if strings.EqualFold(filepath.Ext(cfg.scenario), ".json") {
		return spec.GetScenarioByJSON(data)
	}
	return spec.GetScenarioByYAML(data)
}

func executeSimulator(cfg *config) error {
	if err := cfg.valid(); err != nil {
		return err
	}
	sc, err := loadScenario(cfg)
	if err != nil {
		return err
	}
	if cfg.steps > 0 {
		sc.Steps = cfg.steps
	}
	if cfg.draws > 0 {
		sc.Draws = cfg.draws
	}
	switch {
	case cfg.seed != "":
		sc.Global.Seed, sc.Global.SeedU64 = cfg.seed, nil
	case cfg.seedU64 >= 0:
		u := uint64(cfg.seedU64)
		sc.Global.Seed, sc.Global.SeedU64 = "", &u
	}

	mode, err := logger.ParseMode(cfg.logMode)
	if err != nil {
		return err
	}
	log, ah := logger.NewAsync(4096, mode)
	defer ah.Close()

	ctx := context.Background()
	var st *sqlite.Store
	if cfg.db != "" {
		if st, err = sqlite.Open(cfg.db); err != nil {
			return err
		}
		defer st.Close()
		// 未指定根 seed 時沿用上次記錄的，讓同一情境重跑結果一致
		if !sc.Global.HasSeed() {
			if s, err := st.RootSeed(ctx, core.Default(), sc.Name); err == nil {
				sc.Global.Seed = hex.EncodeToString(s.Bytes())
			} else if !errors.Is(err, sqlite.ErrNotFound) {
				return err
			}
		}
	}

	s, err := seedlab.NewSimulator(sc, seedlab.WithLogger(log))
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	if cfg.out == "table" {
		green, reset := "\033[1;32m", "\033[0m"
		p.Printf("%s[SCENARIO:%s] [WORKERS:%d] [STEPS:%d] [DRAWS:%d] [ROOT:%s]%s\n",
			green, sc.Name, cfg.workers, sc.Steps, sc.Draws, s.RootSeed().String(), reset)
	}

	rep, used, err := s.SimMP(cfg.workers, cfg.showpb)
	if err != nil {
		return err
	}

	if st != nil {
		if err := st.SaveRootSeed(ctx, sc.Name, s.RootSeed()); err != nil {
			return err
		}
		if cfg.snapshot != "" {
			snap, err := s.Lab().Snapshot()
			if err != nil {
				return err
			}
			if err := st.Save(ctx, cfg.snapshot, snap); err != nil {
				return err
			}
		}
	}

	switch cfg.out {
	case "json":
		return rep.WriteWith(os.Stdout, &stats.JsonReportRender{})
	case "yaml":
		return rep.WriteWith(os.Stdout, &stats.YAMLReportRender{})
	default:
		rep.StdOut(used)
		if ah.Dropped() > 0 {
			p.Printf("log records dropped: %d\n", ah.Dropped())
		}
		return nil
	}
}
