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
	"errors"
	"testing"
	"time"

	"github.com/zintix-labs/seedlab/errs"
)

func TestLoadEnvDefaults(t *testing.T) {
	e, err := LoadEnvFrom(map[string]string{})
	if err != nil {
		t.Fatal(err)
	}
	if e.Addr != ":5808" || e.Scenario != "turn_based" || e.WriteTimeout != 30*time.Second {
		t.Fatalf("defaults = %+v", e)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	e, err := LoadEnvFrom(map[string]string{
		"SEEDLAB_ADDR":        ":9000",
		"SEEDLAB_MAX_WORKERS": "3",
		"SEEDLAB_DB_PATH":     "/tmp/seedlab.db",
		"ADDR":                ":1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.Addr != ":9000" || e.MaxWorkers != 3 || e.DBPath != "/tmp/seedlab.db" {
		t.Fatalf("env = %+v", e)
	}
}

func TestLoadEnvBadValue(t *testing.T) {
	_, err := LoadEnvFrom(map[string]string{"SEEDLAB_MAX_STEPS": "many"})
	if !errors.Is(err, errs.ErrBadConfig) {
		t.Fatalf("want bad config, got %v", err)
	}
}

func TestValidRequiresSimulator(t *testing.T) {
	sc := &SvrCfg{}
	if err := sc.Valid(); err == nil {
		t.Fatalf("expected error")
	}
	if sc.Log == nil {
		t.Fatalf("logger default not applied")
	}
}

func TestBuildFromEnv(t *testing.T) {
	e, err := LoadEnvFrom(map[string]string{
		"SEEDLAB_LOG_MODE": "silence",
		"SEEDLAB_SCENARIO": "fan_out",
		"SEEDLAB_DB_PATH":  ":memory:",
	})
	if err != nil {
		t.Fatal(err)
	}
	sc, closer, err := Build(e)
	if err != nil {
		t.Fatal(err)
	}
	defer closer()
	if sc.Store == nil || sc.Sim.Scenario().Name != "fan_out" {
		t.Fatalf("cfg = %+v", sc)
	}
	if got := len(sc.Sim.Members("targets")); got != 5 {
		t.Fatalf("targets = %d", got)
	}
}

func TestBuildUnknownDemo(t *testing.T) {
	e, _ := LoadEnvFrom(map[string]string{"SEEDLAB_SCENARIO": "nope", "SEEDLAB_LOG_MODE": "off"})
	if _, _, err := Build(e); err == nil {
		t.Fatalf("expected error")
	}
}
